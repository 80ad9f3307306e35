package domain

//go:generate mockgen -destination=mocks/mock_domain.go -package=mocks . AccountRepository,LockCoordinator,TransferRepository,UnitOfWork
