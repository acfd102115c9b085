// Package application 通知应用服务。
// 下单通知为尽力而为：任何投递失败都不影响已提交的订单。
package application

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	notifdomain "github.com/wyfcoding/medsupply/internal/notification/domain"
	orderdomain "github.com/wyfcoding/medsupply/internal/order/domain"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/metrics"
	"github.com/wyfcoding/medsupply/pkg/utils"
)

// NotificationFlags 通知开关读取接口
type NotificationFlags interface {
	EmailNotificationsEnabled(ctx context.Context) bool
}

// Dispatcher 下单通知分发器，实现订单上下文的 Notifier
type Dispatcher struct {
	flags   NotificationFlags
	users   userdomain.UserRepository
	sender  notifdomain.Sender
	repo    notifdomain.NotificationRepository
	metrics *metrics.Metrics

	maxAttempts int
	retryDelay  time.Duration
}

// NewDispatcher 创建通知分发器。repo 与 m 允许为 nil。
func NewDispatcher(
	flags NotificationFlags,
	users userdomain.UserRepository,
	sender notifdomain.Sender,
	repo notifdomain.NotificationRepository,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		flags:       flags,
		users:       users,
		sender:      sender,
		repo:        repo,
		metrics:     m,
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
}

// SetRetryPolicy 覆盖单收件人投递的重试策略
func (d *Dispatcher) SetRetryPolicy(maxAttempts int, delay time.Duration) {
	if maxAttempts > 0 {
		d.maxAttempts = maxAttempts
	}
	d.retryDelay = delay
}

// NotifyOrderPlaced 向全部管理员与下单人发送下单通知。
// 开关关闭时直接返回；收件人去重；单个收件人失败只记录，不中断其余投递。
func (d *Dispatcher) NotifyOrderPlaced(ctx context.Context, order *orderdomain.Order) error {
	if !d.flags.EmailNotificationsEnabled(ctx) {
		logger.Debug(ctx, "Email notifications disabled, skipping", "order_no", order.OrderNo)
		return nil
	}

	recipients, err := d.recipients(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to resolve notification recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Nouvelle commande %s", order.OrderNo)
	body := renderOrderPlacedHTML(order)

	for _, to := range recipients {
		d.deliver(ctx, order, to, subject, body)
	}
	return nil
}

// recipients 管理员与下单人邮箱的去重合集，保持稳定顺序
func (d *Dispatcher) recipients(ctx context.Context, order *orderdomain.Order) ([]string, error) {
	admins, err := d.users.ListByRole(ctx, userdomain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(email string) {
		if email == "" {
			return
		}
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}

	for _, admin := range admins {
		add(admin.Email)
	}
	if order.User != nil {
		add(order.User.Email)
	}
	return out, nil
}

// deliver 向单个收件人投递，带重试，结果写入通知记录
func (d *Dispatcher) deliver(ctx context.Context, order *orderdomain.Order, to, subject, body string) {
	orderID := order.ID
	record := &notifdomain.Notification{
		Channel:   notifdomain.ChannelEmail,
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Status:    notifdomain.StatusPending,
		OrderID:   &orderID,
	}
	if d.repo != nil {
		if err := d.repo.Save(ctx, record); err != nil {
			logger.Warn(ctx, "Failed to record notification", "recipient", to, "error", err)
		}
	}

	err := utils.RetryWithBackoff(d.maxAttempts, d.retryDelay, d.retryDelay*10, func() error {
		return d.sender.Send(ctx, &notifdomain.Message{To: to, Subject: subject, HTML: body})
	})

	if err != nil {
		record.Status = notifdomain.StatusFailed
		record.LastError = truncate(err.Error(), 512)
		if d.metrics != nil {
			d.metrics.EmailsFailedTotal.Inc()
		}
		logger.Error(ctx, "Order notification delivery failed",
			"order_no", order.OrderNo, "recipient", to, "error", err)
	} else {
		record.Status = notifdomain.StatusSent
		if d.metrics != nil {
			d.metrics.EmailsSentTotal.Inc()
		}
		logger.Info(ctx, "Order notification delivered", "order_no", order.OrderNo, "recipient", to)
	}

	if d.repo != nil && record.ID != 0 {
		if err := d.repo.Update(ctx, record); err != nil {
			logger.Warn(ctx, "Failed to update notification record", "recipient", to, "error", err)
		}
	}
}

// renderOrderPlacedHTML 渲染下单通知邮件正文
func renderOrderPlacedHTML(order *orderdomain.Order) string {
	var b strings.Builder
	b.WriteString("<h2>Nouvelle commande de consommables</h2>")
	fmt.Fprintf(&b, "<p>Commande <strong>%s</strong>", html.EscapeString(order.OrderNo))
	if order.User != nil {
		fmt.Fprintf(&b, " passée par <strong>%s</strong> (%s)",
			html.EscapeString(order.User.Name), html.EscapeString(order.User.Email))
	}
	b.WriteString("</p>")

	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Produit</th><th>Référence</th><th>Quantité</th></tr>")
	for _, item := range order.Items {
		name := "Produit supprimé"
		reference := ""
		if item.Product != nil {
			name = item.Product.Name
			if item.Product.Reference != nil {
				reference = *item.Product.Reference
			}
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td></tr>",
			html.EscapeString(name), html.EscapeString(reference), item.Quantity)
	}
	b.WriteString("</table>")

	notes := order.Notes
	if notes == "" {
		notes = "Aucune"
	}
	fmt.Fprintf(&b, "<p><strong>Remarques :</strong> %s</p>", html.EscapeString(notes))
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
