package api

// requests---------------------

type QueryRequest struct {
	Question string `json:"question" validate:"required" example:"what is the invoice amount?"`
}

type FilterRequest struct {
	Files []string `json:"files" example:"invoice.pdf"`
}

type GuidelinesRequest struct {
	Text string `json:"text" example:"Always quote amounts with their currency."`
}

// responses--------------------

type IngestResponse struct {
	FileName string `json:"file_name" example:"invoice.pdf"`
	Pages    int    `json:"pages" example:"4"`
	Chunks   int    `json:"chunks" example:"12"`
	Tables   int    `json:"tables" example:"2"`
	Parsed   bool   `json:"parsed" example:"true"`
}

type QueryResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
	NoData   bool     `json:"no_data,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
}

type FilesResponse struct {
	Files  []string `json:"files"`
	Filter []string `json:"filter,omitempty"`
}

type CompareResponse struct {
	Report string `json:"report"`
}

type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
	Detail  string `json:"detail,omitempty"`
}
