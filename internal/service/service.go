package service

import (
	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/kafka"
	"yield-farm-api/internal/openai"
	"yield-farm-api/internal/poolsync"
	"yield-farm-api/internal/storages"
)

// FarmService сервисный слой для бизнес-логики платформы
type FarmService struct {
	storage        storages.Storage
	poolSync       *poolsync.Service
	advisorClient  *openai.Client
	kafkaProducer  *kafka.Producer
	logger         *logrus.Logger
	initialBalance float64
}

// NewFarmService создает новый экземпляр сервиса
func NewFarmService(
	storage storages.Storage,
	poolSync *poolsync.Service,
	advisorClient *openai.Client,
	kafkaProducer *kafka.Producer,
	initialBalance float64,
	logger *logrus.Logger,
) *FarmService {
	return &FarmService{
		storage:        storage,
		poolSync:       poolSync,
		advisorClient:  advisorClient,
		kafkaProducer:  kafkaProducer,
		initialBalance: initialBalance,
		logger:         logger,
	}
}
