package domain

// Adapter names a backing store that statement-resolved fields run against
type Adapter struct {
	Name             string
	Connector        ConnectorType
	ConnectionString string
	Options          map[string]string
}

// Validate validates the adapter domain model
func (a *Adapter) Validate() error {
	if a == nil {
		return ErrInvalidAdapter
	}
	if a.Name == "" {
		return ErrInvalidAdapterName
	}
	if a.ConnectionString == "" {
		return ErrInvalidConnectionString
	}
	if !a.Connector.IsValid() {
		return ErrInvalidConnector
	}
	return nil
}

// Domain errors
var (
	ErrInvalidAdapter          = &DomainError{Message: "adapter cannot be nil"}
	ErrInvalidAdapterName      = &DomainError{Message: "adapter name cannot be empty"}
	ErrInvalidConnectionString = &DomainError{Message: "connection string cannot be empty"}
	ErrInvalidConnector        = &DomainError{Message: "unsupported connector type"}
)

// DomainError represents a domain-level error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
