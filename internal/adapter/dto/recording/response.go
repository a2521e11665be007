package recording

// StartResponse returns the id of the freshly created sermon record
type StartResponse struct {
	SermonID string `json:"sermonId"`
}
