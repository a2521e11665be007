package sermon

// UpdateSermonRequest carries user-editable fields. Absent fields are
// left unchanged.
type UpdateSermonRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=50000"`
}
