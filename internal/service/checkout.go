package service

import (
	"context"
	"fmt"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"go.uber.org/zap"
)

// CheckoutResult 记录一次结账处理的订单数。
// 订单被删除而不是标记已支付时 Degraded 为 true。
type CheckoutResult struct {
	TableID  string
	Affected int64
	Degraded bool
	Warning  string
}

const degradedCheckoutWarning = "orders table cannot record payment; the table's orders were deleted instead. Run the migrate command to keep paid history."

// Checkout 结清一桌所有未支付订单。
func (s *OrderService) Checkout(ctx context.Context, tableID string) (CheckoutResult, error) {
	const op = "service.Checkout"
	in := tableInput{TableID: tableID}
	if err := s.check(op, in); err != nil {
		return CheckoutResult{}, err
	}

	caps, err := s.store.Capabilities(ctx)
	if err != nil {
		return CheckoutResult{}, err
	}

	if caps.Paid {
		n, err := s.store.MarkPaid(ctx, in.TableID, s.opts.Now())
		switch {
		case err == nil:
			res := CheckoutResult{TableID: in.TableID, Affected: n}
			s.publishCheckout(ctx, res)
			return res, nil
		case !apperr.Is(err, apperr.KindMigrationRequired):
			return CheckoutResult{}, err
		}
		// 上次探测之后 paid 列被删除
	}

	if !s.opts.DeleteFallback {
		return CheckoutResult{}, apperr.New(apperr.KindMigrationRequired, op,
			"orders table has no paid column; run the migrate command")
	}

	n, err := s.store.DeleteByQR(ctx, in.TableID)
	if err != nil {
		return CheckoutResult{}, &apperr.Error{
			Kind: apperr.KindMigrationRequired,
			Op:   op,
			Msg:  "checkout failed and orders could not be cleared; run the migrate command",
			Err:  err,
		}
	}
	s.log.Warn("degraded checkout deleted orders",
		zap.String("table_id", in.TableID), zap.Int64("deleted", n))

	res := CheckoutResult{TableID: in.TableID, Affected: n, Degraded: true, Warning: degradedCheckoutWarning}
	s.publishCheckout(ctx, res)
	return res, nil
}

// Message 返回给店员看的结果说明。
func (r CheckoutResult) Message() string {
	if r.Degraded {
		return fmt.Sprintf("Table %s cleared (%d orders removed)", r.TableID, r.Affected)
	}
	return fmt.Sprintf("Table %s checked out (%d orders paid)", r.TableID, r.Affected)
}

func (s *OrderService) publishCheckout(ctx context.Context, res CheckoutResult) {
	s.publish(ctx, model.OrderEvent{
		Type:     model.EventTableCheckedOut,
		QRID:     res.TableID,
		TableID:  res.TableID,
		Affected: res.Affected,
		Degraded: res.Degraded,
	})
}
