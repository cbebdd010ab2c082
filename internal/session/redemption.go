package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// RedemptionService redeems coupon codes and writes the returned balance
// straight into the ledger.
type RedemptionService struct {
	redeemer CouponRedeemer
	ledger   *Ledger
	log      zerolog.Logger
}

// NewRedemptionService creates a RedemptionService.
func NewRedemptionService(redeemer CouponRedeemer, ledger *Ledger, logger zerolog.Logger) *RedemptionService {
	return &RedemptionService{
		redeemer: redeemer,
		ledger:   ledger,
		log:      logger.With().Str("component", "redemption").Logger(),
	}
}

// Redeem exchanges code for a new balance. A blank code fails with
// KindEmptyCode without a network call. There is no retry: a failed
// redemption needs a new explicit attempt.
func (s *RedemptionService) Redeem(ctx context.Context, code string) (Redemption, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Redemption{}, NewError(KindEmptyCode, "please enter a coupon code", nil)
	}

	result, err := s.redeemer.RedeemCoupon(ctx, code)
	if err != nil {
		err = classify(err)
		s.log.Warn().Err(err).Str("kind", KindOf(err).String()).Msg("coupon redemption failed")
		if IsKind(err, KindAuthorization) {
			if _, rerr := s.ledger.Refresh(ctx); rerr != nil {
				s.log.Warn().Err(rerr).Msg("balance refresh after rejected redemption failed")
			}
		}
		return Redemption{}, err
	}

	if err := s.ledger.ApplyCouponResult(result.NewBalance); err != nil {
		return Redemption{}, err
	}
	s.log.Debug().Int("balance", result.NewBalance).Msg("coupon redeemed")
	return result, nil
}
