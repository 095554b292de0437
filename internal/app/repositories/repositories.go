package repositories

// Repositories holds all the repository instances
type Repositories struct {
	RegistrationRepository *RegistrationRepository
}

// NewRepositories initializes all repositories against the data directory
func NewRepositories(dataDir string) (*Repositories, error) {
	regRepo, err := NewRegistrationRepository(dataDir)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		RegistrationRepository: regRepo,
	}, nil
}
