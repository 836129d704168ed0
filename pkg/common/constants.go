package common

const (
	RedisStreamChatAnalyze = "chat.message.analyze"
	RedisStreamChatResult  = "chat.message.result"

	RedisStreamGroup    = "coach-group"
	RedisStreamConsumer = "coach-consumer"
)
