package model

// Spec is a read-only summary of a generated OpenAPI document.
type Spec struct {
	Info       Info
	Servers    []Server
	Tags       []Tag
	Paths      []Path
	Operations []Operation
	Schemas    []string
}

// OperationByID returns the operation with the given operationId, or nil.
func (s *Spec) OperationByID(id string) *Operation {
	for i := range s.Operations {
		if s.Operations[i].ID == id {
			return &s.Operations[i]
		}
	}
	return nil
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type Server struct {
	URL         string `koanf:"url"`
	Description string `koanf:"description"`
}

// DefaultServers returns the deployments every generated document lists, in order.
func DefaultServers() []Server {
	return []Server{
		{URL: "https://swaps.zeuslsp.com/api/v2", Description: "Mainnet"},
		{URL: "https://testnet-swaps.zeuslsp.com/api/v2", Description: "Testnet"},
		{URL: "http://localhost:9006/v2", Description: "Regtest"},
	}
}

type Tag struct {
	Name        string
	Description string
}

type Path struct {
	Path       string
	Operations []Operation
}
