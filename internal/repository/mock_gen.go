// internal/repository/mock_gen.go
package repository

//go:generate mockgen -typed -source=./admin.go -destination=../mocks/mock_admin_repository.go -package=mocks AdminRepositoryIface
