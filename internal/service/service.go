// Package service 在菜单与启动时选定的订单存储之间
// 协调订单。
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TableListLimit  = 50
	GlobalListLimit = 100
)

// OrderStore 是 service 需要的持久化接口，store.Store 实现了它。
type OrderStore interface {
	Name() string
	Capabilities(ctx context.Context) (model.Capabilities, error)
	Insert(ctx context.Context, draft model.OrderDraft) (model.Record, error)
	List(ctx context.Context, f model.Filter) ([]model.Record, error)
	MarkPaid(ctx context.Context, tableID string, at time.Time) (int64, error)
	DeleteByQR(ctx context.Context, qrID string) (int64, error)
	SetServed(ctx context.Context, id int64, served bool, at time.Time) (model.Record, error)
	Count(ctx context.Context) (int64, error)
}

// Menu 是 service 需要的菜单视图。
type Menu interface {
	Load(ctx context.Context) ([]model.MenuItem, error)
	FindByName(ctx context.Context, name string) (model.MenuItem, bool, error)
	PriceLookup(ctx context.Context) model.PriceLookup
	Loaded() bool
}

// EventPublisher 在状态变更成功后接收订单事件。
type EventPublisher interface {
	Publish(ctx context.Context, ev model.OrderEvent) error
}

// Options 启动时确定。
type Options struct {
	Env        string
	Restricted bool
	// DeleteFallback 允许存储无法记录支付时
	// 结账直接删除该桌订单。
	DeleteFallback bool
	HasRemoteURL   bool
	HasRemoteKey   bool
	Now            func() time.Time
}

// OrderService 实现下单、查询、结账与出餐。
type OrderService struct {
	store    OrderStore
	menu     Menu
	events   EventPublisher
	opts     Options
	log      *zap.Logger
	validate *validator.Validate
}

// New 组装 service，events 可为 nil。
func New(st OrderStore, menu Menu, events EventPublisher, opts Options, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &OrderService{
		store:    st,
		menu:     menu,
		events:   events,
		opts:     opts,
		log:      log.Named("orders"),
		validate: newValidator(),
	}
}

// Restricted 表示是否禁用全局订单列表。
func (s *OrderService) Restricted() bool { return s.opts.Restricted }

type placeOrderInput struct {
	QRID   string `validate:"max=50,notblank"`
	MenuID string `validate:"max=100,notblank"`
}

type qrInput struct {
	QRID string `validate:"max=50,notblank"`
}

type tableInput struct {
	TableID string `validate:"max=50,notblank"`
}

type toggleInput struct {
	ID int64 `validate:"gt=0"`
}

// PlaceOrder 为一桌记录一个菜品。菜单中没有的菜品按 0 元接受。
func (s *OrderService) PlaceOrder(ctx context.Context, qrID, menuID string) (model.Order, error) {
	in := placeOrderInput{QRID: qrID, MenuID: menuID}
	if err := s.check("service.PlaceOrder", in); err != nil {
		return model.Order{}, err
	}

	var price int64
	item, found, err := s.menu.FindByName(ctx, in.MenuID)
	switch {
	case err != nil:
		s.log.Warn("menu unavailable, order priced at 0", zap.String("menu_id", in.MenuID), zap.Error(err))
	case found:
		price = item.Price
	default:
		s.log.Info("menu item not in catalogue, order priced at 0", zap.String("menu_id", in.MenuID))
	}

	rec, err := s.store.Insert(ctx, model.OrderDraft{
		QRID:      in.QRID,
		MenuID:    in.MenuID,
		TableID:   in.QRID,
		Price:     price,
		Timestamp: s.opts.Now(),
	})
	if err != nil {
		return model.Order{}, err
	}

	order := rec.Normalize(func(string) (int64, bool) { return price, true })
	order.Paid, order.PaidAt = false, nil
	order.Served, order.ServedAt = false, nil

	s.publish(ctx, model.OrderEvent{
		Type:    model.EventOrderPlaced,
		OrderID: order.ID,
		QRID:    order.QRID,
		TableID: order.TableID,
		MenuID:  order.MenuID,
		Price:   order.Price,
	})
	return order, nil
}

// ListForTable 返回一桌最近的未结订单。
func (s *OrderService) ListForTable(ctx context.Context, qrID string) ([]model.Order, error) {
	in := qrInput{QRID: qrID}
	if err := s.check("service.ListForTable", in); err != nil {
		return nil, err
	}
	return s.list(ctx, model.Filter{QRID: in.QRID, UnpaidOnly: true, Limit: TableListLimit})
}

// ListAll 返回所有桌最近的订单，受限模式下禁用。
func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	if s.opts.Restricted {
		return nil, apperr.New(apperr.KindForbidden, "service.ListAll", "global order listing is disabled")
	}
	return s.list(ctx, model.Filter{Limit: GlobalListLimit})
}

// ListAdminView 返回所有未结订单；
// 存储无法区分是否已支付时返回全部订单。
func (s *OrderService) ListAdminView(ctx context.Context) ([]model.Order, error) {
	return s.list(ctx, model.Filter{UnpaidOnly: true})
}

// TableSummaries 按桌汇总管理视图，最近活跃的桌在前。
func (s *OrderService) TableSummaries(ctx context.Context) ([]model.TableSummary, error) {
	orders, err := s.ListAdminView(ctx)
	if err != nil {
		return nil, err
	}

	byTable := make(map[string]*model.TableSummary)
	var tables []*model.TableSummary
	for _, o := range orders {
		t, ok := byTable[o.TableID]
		if !ok {
			t = &model.TableSummary{TableID: o.TableID, FirstOrder: o.Timestamp, LastOrder: o.Timestamp}
			byTable[o.TableID] = t
			tables = append(tables, t)
		}
		t.OrderCount++
		t.Total += o.Price
		if o.Served {
			t.ServedCount++
		}
		if o.Timestamp.Before(t.FirstOrder) {
			t.FirstOrder = o.Timestamp
		}
		if o.Timestamp.After(t.LastOrder) {
			t.LastOrder = o.Timestamp
		}
		t.Orders = append(t.Orders, o)
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if !tables[i].LastOrder.Equal(tables[j].LastOrder) {
			return tables[i].LastOrder.After(tables[j].LastOrder)
		}
		return tables[i].TableID < tables[j].TableID
	})

	out := make([]model.TableSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, *t)
	}
	return out, nil
}

func (s *OrderService) list(ctx context.Context, f model.Filter) ([]model.Order, error) {
	recs, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	var lookup model.PriceLookup
	for _, r := range recs {
		if !r.Schema.Price {
			lookup = s.menu.PriceLookup(ctx)
			break
		}
	}
	return model.NormalizeAll(recs, lookup), nil
}

// newValidator 先按原始值校验长度再拒绝空白，
// 首尾空格不能让超长 id 绕过限制。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

func (s *OrderService) check(op string, in any) error {
	if err := s.validate.Struct(in); err != nil {
		return &apperr.Error{Kind: apperr.KindValidation, Op: op, Msg: validationMessage(err), Err: err}
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	field := fieldName(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt":
		return field + " must be a positive integer"
	default:
		return field + " is invalid"
	}
}

func fieldName(f string) string {
	switch f {
	case "QRID":
		return "qr_id"
	case "MenuID":
		return "menu_id"
	case "TableID":
		return "table_id"
	case "ID":
		return "order_id"
	default:
		return strings.ToLower(f)
	}
}

// publish 不会让调用方失败，状态变更已经完成。
func (s *OrderService) publish(ctx context.Context, ev model.OrderEvent) {
	if s.events == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = s.opts.Now()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish order event",
			zap.String("type", string(ev.Type)),
			zap.String("table_id", ev.TableID),
			zap.Error(err))
	}
}
