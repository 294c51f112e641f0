package models

// SearchParams are the query parameters for GET /search.
type SearchParams struct {
	Search      string
	Gender      string
	ClassLevel  string
	AreaCouncil string
	PinCategory string
	Page        int
	Limit       int
}

// Member is one searchable registrant record.
type Member struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender,omitempty"`
	ClassLevel  string `json:"class_level,omitempty"`
	AreaCouncil string `json:"area_council,omitempty"`
	PinCategory string `json:"pin_category,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// SearchResult is a page of member records.
type SearchResult struct {
	Items      []Member `json:"items"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
}

// RegistrationRequest is the body for POST /registration/new and
// POST /registration/existing.
type RegistrationRequest struct {
	MemberID    string   `json:"member_id,omitempty"`
	FullName    string   `json:"full_name"`
	Gender      string   `json:"gender"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email,omitempty"`
	Category    Category `json:"category"`
	ClassLevel  string   `json:"class_level,omitempty"`
	AreaCouncil string   `json:"area_council,omitempty"`
	Ailments    []string `json:"ailments,omitempty"`
	Reference   string   `json:"reference,omitempty"`
}

// RegistrationLookup is the body for POST /registration/fetch.
type RegistrationLookup struct {
	Reference string `json:"reference,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Registration is a confirmed or pending registration record.
type Registration struct {
	Reference string   `json:"reference"`
	MemberID  string   `json:"member_id,omitempty"`
	FullName  string   `json:"full_name"`
	Category  Category `json:"category"`
	Status    string   `json:"status"`
	Amount    Num      `json:"amount"`
	Paid      bool     `json:"paid"`
	SlipURL   string   `json:"slip_url,omitempty"`
}

// SlipRequest is the body for POST /slip/reprint.
type SlipRequest struct {
	Reference string `json:"reference"`
	Phone     string `json:"phone,omitempty"`
}

// Slip is a printable confirmation record for a completed registration.
type Slip struct {
	Reference string `json:"reference"`
	FullName  string `json:"full_name"`
	Category  string `json:"category"`
	Amount    Num    `json:"amount"`
	IssuedAt  string `json:"issued_at,omitempty"`
	URL       string `json:"url,omitempty"`
}

// CallbackResult is the response from the payment and donation callback
// verification endpoints.
type CallbackResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    Num    `json:"amount"`
	Message   string `json:"message,omitempty"`
}

// Ailment is one entry from GET /basic-needs/ailments.
type Ailment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Council is one entry from GET /basic-needs/councils.
type Council struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
