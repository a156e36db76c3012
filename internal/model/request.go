package model

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateCertificateRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"duration_days"`
	Tags         []string `json:"tags"`
}

// PatchCertificateRequest carries optional fields; nil means leave unchanged.
type PatchCertificateRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Price        *float64  `json:"price"`
	DurationDays *int      `json:"duration_days"`
	Tags         *[]string `json:"tags"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}
