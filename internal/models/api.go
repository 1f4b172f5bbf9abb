package models

// ScreeningRequest.FileData is a pointer so that an absent field is rejected while an empty
// upload reaches the pipeline and fails there.
type ScreeningRequest struct {
	Filename string  `json:"filename" validate:"required,max=255"`
	FileData *string `json:"filedata" validate:"required"`
	Role     string  `json:"role" validate:"max=200"`
}

type ScreeningResponse struct {
	Feedback    string  `json:"feedback"`
	RoleMatched string  `json:"role_matched"`
	Similarity  float64 `json:"similarity"`
	Timing      Timing  `json:"timing"`
	ScreeningID string  `json:"screening_id"`
}

// Timing values are seconds rounded to two decimals.
type Timing struct {
	ParseTime      float64 `json:"parse_time"`
	RetrievalTime  float64 `json:"retrieval_time"`
	GenerationTime float64 `json:"generation_time"`
	TotalTime      float64 `json:"total_time"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type RolesResponse struct {
	Roles []string `json:"roles"`
}
