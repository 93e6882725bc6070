package event

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

const routingKeyVideoReady = "video.response.ready"

// AmqpNotifier publishes video-ready events to a topic exchange consumed by
// the AI-analysis service.
type AmqpNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAmqpNotifier(amqpURL, exchange string) (*AmqpNotifier, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AmqpNotifier{conn: conn, channel: ch, exchange: exchange}, nil
}

func (n *AmqpNotifier) NotifyVideoReady(videoResponseID uint) error {
	body, err := json.Marshal(map[string]interface{}{
		"type": routingKeyVideoReady,
		"payload": map[string]uint{
			"video_response_id": videoResponseID,
		},
	})
	if err != nil {
		return err
	}
	return n.channel.Publish(
		n.exchange,
		routingKeyVideoReady,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (n *AmqpNotifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}
