package dto

import "time"

type Filter struct {
	Limit       int      `query:"limit"`
	Offset      int      `query:"offset"`
	Q           string   `query:"q"`
	ProductName string   `query:"product_name"`
	TempOnly    bool     `query:"temp_only"`
	Sort        []string `query:"sort"`
	Order       string   `query:"order"`
	Compact     bool     `query:"compact"`
	Expanded    bool     `query:"expanded"`

	// parsed by hand, echo cannot bind these
	LoginActive   *bool
	ModifiedSince *time.Time
	LocationID    string
}

type PaginationResponse struct {
	Results interface{} `json:"results"`
	Total   int64       `json:"total"`
}
