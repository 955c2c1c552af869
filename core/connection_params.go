package core

import "encoding/json"

// ConnectionParams describe an endpoint before template expansion.
type ConnectionParams struct {
	ID   ClientID
	Name string
	URL  string
}

// Expand returns a copy of the parameters with templates rendered.
func (p *ConnectionParams) Expand() *ConnectionParams {
	return &ConnectionParams{
		ID:   ClientID(expandOrDefault(string(p.ID))),
		Name: expandOrDefault(p.Name),
		URL:  expandOrDefault(p.URL),
	}
}

func (p *ConnectionParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	}{
		ID:   string(p.ID),
		Name: p.Name,
		URL:  p.URL,
	})
}
