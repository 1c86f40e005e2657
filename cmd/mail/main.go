package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/safari-ops/entry-scheduler/backend/internal/config"
	"github.com/wneessen/go-mail"
)

func main() {
	var templateDir string
	flag.StringVar(&templateDir, "templates", "./templates", "邮件模板所在的目录")
	flag.Parse()

	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		return
	}

	m, err := loadMailer(templateDir, cfg.Email.SMTP.Username)
	if err != nil {
		logger.Error("无法解析邮件模板", "error", err)
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", "error", err)
		return
	}
	defer client.Close()

	// 验证邮件客户端是否能连接成功
	dialCtx, dialCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer dialCancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", "error", err)
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", "error", err)
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // 队列名称
		true,          // 持久化
		false,         // 没有消费者时不自动删除
		false,         // 不独占
		false,         // 等待 RabbitMQ 确认
		nil,
	)
	if err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	// 一次只处理一封邮件
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", "error", err)
		return
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", "error", err)
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}

				msg, err := m.build(delivery.Body)
				if err != nil {
					logger.Error("无法构建邮件", "error", err, "message", string(delivery.Body))
					_ = delivery.Nack(false, false)
					continue
				}

				if err := client.DialAndSendWithContext(ctx, msg); err != nil {
					logger.Error("邮件发送失败", "error", err)
					_ = delivery.Nack(false, true) // 重新入队
					continue
				}

				logger.Info("邮件发送成功", "size", len(delivery.Body))
				_ = delivery.Ack(false)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	logger.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}
