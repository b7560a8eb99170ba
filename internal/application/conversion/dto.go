package conversion

// Upload is a spreadsheet received from a client or read from disk.
type Upload struct {
	Filename string
	Content  []byte
}

// LeadBundleRequest carries the request-scoped values stamped into the CRM bundle.
type LeadBundleRequest struct {
	Funnel string `json:"funil" form:"funil" binding:"required,notblank"`
	User   string `json:"usuario_responsavel" form:"usuario_responsavel" binding:"required,notblank"`
}

// Archive is a file produced by a conversion, ready to be downloaded.
type Archive struct {
	Name        string
	ContentType string
	Body        []byte
}

// EmailResult is the response of the email extractor.
type EmailResult struct {
	Emails      []string `json:"emails"`
	ExcelBase64 string   `json:"excel_base64,omitempty"`
}
