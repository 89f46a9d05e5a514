package rabbitmq

// QueueConfig имя очереди и ключ маршрутизации в обменнике fares
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetHistoryQueues возвращает очереди конвейера истории цен
func GetHistoryQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "fares.price-history", RoutingKey: "daily-prices"},
	}
}
