package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailKind struct {
	file    string
	subject string
	data    func() any
}

var mailKinds = map[string]mailKind{
	domain.MailTypeCreateUser: {
		file:    "new_account_email.html",
		subject: "园区入园调度系统 - 账户信息",
		data:    func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeResetPassword: {
		file:    "reset_password_otp_email.html",
		subject: "园区入园调度系统 - 重置密码",
		data:    func() any { return &domain.ResetPasswordMailData{} },
	},
	domain.MailTypeChangeEmail: {
		file:    "change_email_email.html",
		subject: "园区入园调度系统 - 修改邮箱",
		data:    func() any { return &domain.ChangeEmailMailData{} },
	},
	domain.MailTypeScheduleAssigned: {
		file:    "schedule_assigned_email.html",
		subject: "园区入园调度系统 - 入园时间安排",
		data:    func() any { return &domain.ScheduleAssignedMailData{} },
	},
}

// 与 domain.MailMessage 对应，Data 按邮件类型延迟解析
type incomingMail struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type mailer struct {
	from      string
	templates map[string]*template.Template
}

// loadMailer 启动时一次性解析所有模板
func loadMailer(dir, from string) (*mailer, error) {
	m := &mailer{
		from:      from,
		templates: make(map[string]*template.Template, len(mailKinds)),
	}

	for typ, kind := range mailKinds {
		tmpl, err := template.ParseFiles(filepath.Join(dir, kind.file))
		if err != nil {
			return nil, err
		}
		m.templates[typ] = tmpl
	}

	return m, nil
}

// decode 解析队列中的消息，返回邮件类型、收件人和对应类型的数据
func (m *mailer) decode(body []byte) (string, string, any, error) {
	var in incomingMail
	if err := json.Unmarshal(body, &in); err != nil {
		return "", "", nil, err
	}

	kind, ok := mailKinds[in.Type]
	if !ok {
		return "", "", nil, fmt.Errorf("不支持的邮件类型 %q", in.Type)
	}

	data := kind.data()
	if err := json.Unmarshal(in.Data, data); err != nil {
		return "", "", nil, err
	}

	return in.Type, in.To, data, nil
}

// build 构建邮件，返回的错误都无法通过重试解决
func (m *mailer) build(body []byte) (*mail.Msg, error) {
	typ, to, data, err := m.decode(body)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	if err := msg.SetBodyHTMLTemplate(m.templates[typ], data); err != nil {
		return nil, err
	}
	msg.Subject(mailKinds[typ].subject)

	return msg, nil
}
