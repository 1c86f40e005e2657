package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/utils"
)

const mailQueue = "email_queue"

// publishMail 把邮件放入消息队列，由 mail 服务负责发送
func (h *Handler) publishMail(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		mailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (h *Handler) redisContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

// issueOTP 生成验证码并保存到 redis，返回验证码和以分钟为单位的有效期
func (h *Handler) issueOTP(key string) (string, int, error) {
	otp := utils.GenerateRandomOTP()

	ctx, cancel := h.redisContext(context.Background())
	defer cancel()

	if err := h.redisClient.Set(ctx, key, otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		return "", 0, err
	}

	return otp, h.config.OTP.Expiration / 60, nil
}

// verifyOTP 无论校验是否成功都会删除验证码，每个验证码只有一次机会
func (h *Handler) verifyOTP(ctx context.Context, key, otp string) (bool, error) {
	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	stored, err := h.redisClient.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return stored == otp, nil
}

func resetPasswordOTPKey(username string) string {
	return fmt.Sprintf("otp_%s_reset_password", username)
}

func changeEmailOTPKey(username, email string) string {
	return fmt.Sprintf("otp_%s_change_email_to_%s", username, email)
}
