package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/repository/postgres"
)

// Repositories - репозитории поверх тестовой базы
type Repositories struct {
	Vendors repository.VendorRepository
	Clients repository.ClientRepository
	Orders  repository.OrderRepository
}

// NewRepositories создаёт репозитории заведений, клиентов и заказов на одном соединении
func NewRepositories(db *sqlx.DB, logger *zap.Logger) Repositories {
	pg := postgres.NewDBForTest(db, logger)
	return Repositories{
		Vendors: postgres.NewVendorRepository(pg),
		Clients: postgres.NewClientRepository(pg),
		Orders:  postgres.NewOrderRepository(pg),
	}
}
