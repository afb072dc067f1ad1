package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	l                  *slog.Logger
	w                  *kafka.Writer
	notificationsTopic string
}

func NewProducer(l *slog.Logger, brokers []string, topic string) *Producer {
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "",
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		Logger:                 &infoLogger{l: l},
		ErrorLogger:            &errorLogger{l: l},
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		l:                  l,
		w:                  w,
		notificationsTopic: topic,
	}
}

type SendEmailEvent struct {
	Type       string   `json:"type"`
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	HTMLBody   string   `json:"html_body,omitempty"`
	Recipients []string `json:"recipients"`
}

// SendEmail publishes an outbound email event. Delivery is fire-and-forget:
// failures are logged, never returned to the caller.
func (p *Producer) SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) {
	event := SendEmailEvent{
		Type:       "email",
		Subject:    subject,
		Message:    textBody,
		HTMLBody:   htmlBody,
		Recipients: []string{to},
	}

	b, err := json.Marshal(event)
	if err != nil {
		p.l.Error(fmt.Sprintf("marshal event: %s", err))
		return
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(to),
		Value: b,
		Topic: p.notificationsTopic,
	})
	if err != nil {
		p.l.Error(fmt.Sprintf("write kafka message: %s", err))
		return
	}
}

func (p *Producer) Close() {
	err := p.w.Close()
	if err != nil {
		p.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}
