package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/exception-service/internal/domain"
)

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	mongoContainer *mongodb.MongoDBContainer
	client         *mongo.Client
	db             *mongo.Database
	repo           *OrderRepository
	ctx            context.Context
}

func (s *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := mongodb.Run(s.ctx, "mongo:6")
	s.Require().NoError(err)
	s.mongoContainer = container

	connStr, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	client, err := mongo.Connect(s.ctx, options.Client().ApplyURI(connStr))
	s.Require().NoError(err)
	s.client = client

	s.Require().NoError(client.Ping(s.ctx, nil))

	s.db = client.Database("exceptions_test")
	s.repo = NewOrderRepository(s.db)
}

func (s *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Disconnect(s.ctx)
	}
	if s.mongoContainer != nil {
		s.Require().NoError(s.mongoContainer.Terminate(s.ctx))
	}
}

func (s *OrderRepositoryIntegrationTestSuite) TearDownTest() {
	s.db.Collection("orders").Drop(s.ctx)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}

func (s *OrderRepositoryIntegrationTestSuite) newOrder(number int, orderType domain.Type, status domain.Status) *domain.Order {
	return &domain.Order{
		OrderID:       "order-" + time.Now().Format("150405.000000000"),
		Number:        number,
		Status:        status,
		Type:          orderType,
		TransactionID: "txn-1",
		Items: []domain.OrderItem{
			{ItemID: "item-1", Status: domain.ItemStatusWIP, Released: true},
		},
	}
}

func (s *OrderRepositoryIntegrationTestSuite) TestSaveAndFindByNumber() {
	order := s.newOrder(1001, domain.TypeB2C, domain.StatusWIP)
	s.Require().NoError(s.repo.Save(s.ctx, order))

	found, err := s.repo.Find(s.ctx, domain.SearchParameters{OrderNumbers: []int{1001}})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(1001, found[0].Number)
	s.Equal(domain.TypeB2C, found[0].Type)
	s.False(found[0].LastUpdate.IsZero())
}

func (s *OrderRepositoryIntegrationTestSuite) TestSaveUpsertsByOrderNumber() {
	order := s.newOrder(1001, domain.TypeB2C, domain.StatusWIP)
	s.Require().NoError(s.repo.Save(s.ctx, order))

	order.Status = domain.StatusComplete
	s.Require().NoError(s.repo.Save(s.ctx, order))

	found, err := s.repo.Find(s.ctx, domain.SearchParameters{OrderNumbers: []int{1001}})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(domain.StatusComplete, found[0].Status)
}

func (s *OrderRepositoryIntegrationTestSuite) TestFindByTypeAndStatus() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newOrder(1001, domain.TypeB2C, domain.StatusWIP)))
	s.Require().NoError(s.repo.Save(s.ctx, s.newOrder(1002, domain.TypeB2B, domain.StatusWIP)))
	s.Require().NoError(s.repo.Save(s.ctx, s.newOrder(1003, domain.TypeB2C, domain.StatusComplete)))

	found, err := s.repo.Find(s.ctx, domain.SearchParameters{
		Types:    []domain.Type{domain.TypeB2C},
		Statuses: []domain.Status{domain.StatusWIP},
	})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(1001, found[0].Number)
}

func (s *OrderRepositoryIntegrationTestSuite) TestFindWithNoCriteriaReturnsEverything() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newOrder(1001, domain.TypeB2C, domain.StatusWIP)))
	s.Require().NoError(s.repo.Save(s.ctx, s.newOrder(1002, domain.TypeB2B, domain.StatusWIP)))

	found, err := s.repo.Find(s.ctx, domain.SearchParameters{})
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *OrderRepositoryIntegrationTestSuite) TestSaveItem() {
	order := s.newOrder(1001, domain.TypeB2C, domain.StatusWIP)
	s.Require().NoError(s.repo.Save(s.ctx, order))

	item := order.Items[0]
	item.Status = domain.ItemStatusStraggled
	item.NumStraggles = 2
	s.Require().NoError(s.repo.SaveItem(s.ctx, &item))

	found, err := s.repo.Find(s.ctx, domain.SearchParameters{OrderNumbers: []int{1001}})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(domain.ItemStatusStraggled, found[0].Items[0].Status)
	s.Equal(2, found[0].Items[0].NumStraggles)
}

func (s *OrderRepositoryIntegrationTestSuite) TestSaveItemUnknownItemFails() {
	err := s.repo.SaveItem(s.ctx, &domain.OrderItem{ItemID: "missing", Status: domain.ItemStatusPicked})
	s.Error(err)
}
