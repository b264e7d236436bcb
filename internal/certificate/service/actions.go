package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/cqrs"
	"go.uber.org/zap"
)

var ErrWhitelistMissing = errors.New("source_account_not_whitelisted_by_target")

type actionHandler func(ctx context.Context, action *domain.GranularCertificateAction) error

// ProcessAction runs one lifecycle request end to end. The outcome lives on
// the returned action record: a handler failure is recorded as a rejection
// with its reason, not returned as an error. The record is persisted either
// way; the returned error covers only the persistence of the record itself.
//
// Handlers commit bundle by bundle, so a failure partway through a
// multi-bundle action leaves the earlier bundles mutated. The action record
// still reports the rejection.
func (s *Service) ProcessAction(ctx context.Context, action *domain.GranularCertificateAction) (*domain.GranularCertificateAction, error) {
	if action.ID == 0 {
		action.ID = s.genID.Generate()
	}
	action.ActionRequestDatetime = s.clock.Now()

	handlers := map[domain.ActionType]actionHandler{
		domain.ActionTransfer: s.transferCertificates,
		domain.ActionCancel:   s.cancelCertificates,
		domain.ActionClaim:    s.claimCertificates,
		domain.ActionWithdraw: s.withdrawCertificates,
		domain.ActionLock:     s.lockCertificates,
		domain.ActionReserve:  s.reserveCertificates,
	}

	var handlerErr error
	if err := s.validateUserAccess(ctx, action); err != nil {
		handlerErr = err
	} else if handler, ok := handlers[action.ActionType]; !ok {
		handlerErr = fmt.Errorf("%w: %s", domain.ErrUnknownActionType, action.ActionType)
	} else {
		handlerErr = handler(ctx, action)
	}

	completed := s.clock.Now()
	action.ActionCompletedDatetime = &completed
	if handlerErr != nil {
		reason := handlerErr.Error()
		action.ActionResponseStatus = domain.ActionRejected
		action.RejectionReason = &reason
		s.log.Warn("certificate action rejected",
			zap.String("action_type", string(action.ActionType)),
			zap.Int64("source_id", int64(action.SourceID)),
			zap.Error(handlerErr),
		)
	} else {
		action.ActionResponseStatus = domain.ActionAccepted
	}

	if err := s.cqrs.Create(ctx, action); err != nil {
		return nil, err
	}
	s.metrics.RecordAction(string(action.ActionType), string(action.ActionResponseStatus))
	return action, nil
}

func (s *Service) validateUserAccess(ctx context.Context, action *domain.GranularCertificateAction) error {
	user, err := s.users.FindByID(ctx, s.read, action.UserID)
	if err != nil {
		return err
	}
	if !user.HasAccountAccess(action.SourceID) {
		return fmt.Errorf("user %d does not have access to account %d", action.UserID, action.SourceID)
	}
	return nil
}

// resolveBundles matches an action to bundles: explicit IDs when given,
// otherwise the action's filter parameters over the source account.
func (s *Service) resolveBundles(ctx context.Context, action *domain.GranularCertificateAction) ([]*domain.GranularCertificateBundle, error) {
	var bundles []*domain.GranularCertificateBundle
	var err error
	if len(action.BundleIDs) > 0 {
		bundles, err = s.repo.FindByIDs(ctx, s.read, action.BundleIDs)
	} else {
		bundles, err = s.repo.Search(ctx, s.read, action.Filter())
	}
	if err != nil {
		return nil, err
	}
	if len(bundles) == 0 {
		return nil, domain.ErrNoBundlesMatched
	}
	return bundles, nil
}

func requireStatuses(bundles []*domain.GranularCertificateBundle, action domain.ActionType, allowed ...domain.CertificateStatus) error {
	for _, b := range bundles {
		ok := false
		for _, status := range allowed {
			if b.CertificateStatus == status {
				ok = true
				break
			}
		}
		if !ok {
			return &domain.PreconditionError{
				BundleID: int64(b.ID),
				Action:   action,
				Reason:   fmt.Sprintf("status is %q", b.CertificateStatus),
			}
		}
	}
	return nil
}

// applyQuantityOrPercentage splits a bundle down to the action's requested
// size and returns the bundle the action should mutate. Without a quantity or
// percentage the bundle passes through unsplit, as it does when the requested
// quantity covers the whole bundle.
func (s *Service) applyQuantityOrPercentage(sess *cqrs.Session, bundle *domain.GranularCertificateBundle, action *domain.GranularCertificateAction) (*domain.GranularCertificateBundle, error) {
	if action.CertificateQuantity == nil && action.CertificatePercentage == nil {
		return bundle, nil
	}
	if action.CertificateQuantity != nil && action.CertificatePercentage != nil {
		return nil, domain.ErrQuantityConflict
	}

	var sizeToSplit int64
	if action.CertificateQuantity != nil {
		if bundle.BundleQuantity <= *action.CertificateQuantity {
			return bundle, nil
		}
		sizeToSplit = *action.CertificateQuantity
	} else {
		sizeToSplit = int64(*action.CertificatePercentage * float64(bundle.BundleQuantity))
		if sizeToSplit >= bundle.BundleQuantity {
			return bundle, nil
		}
	}

	child1, _, err := s.splitBundle(sess, bundle, sizeToSplit)
	if err != nil {
		return nil, err
	}
	return child1, nil
}

// mutateBundles applies patchFor to each matched bundle in its own logical
// transaction, splitting first when the action requests a partial quantity.
func (s *Service) mutateBundles(ctx context.Context, action *domain.GranularCertificateAction, bundles []*domain.GranularCertificateBundle, patchFor func(b *domain.GranularCertificateBundle) map[string]any) error {
	for _, bundle := range bundles {
		err := s.cqrs.Transaction(ctx, func(sess *cqrs.Session) error {
			target, err := s.applyQuantityOrPercentage(sess, bundle, action)
			if err != nil {
				return err
			}
			return sess.Update(target, patchFor(target))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) transferCertificates(ctx context.Context, action *domain.GranularCertificateAction) error {
	if action.TargetID == nil {
		return domain.ErrTargetRequired
	}
	target, err := s.accounts.FindByID(ctx, s.read, *action.TargetID)
	if err != nil {
		return err
	}
	if !target.HasWhitelisted(action.SourceID) {
		return fmt.Errorf("%w: target %d, source %d", ErrWhitelistMissing, *action.TargetID, action.SourceID)
	}

	bundles, err := s.resolveBundles(ctx, action)
	if err != nil {
		return err
	}
	if err := requireStatuses(bundles, domain.ActionTransfer, domain.StatusActive); err != nil {
		return err
	}

	return s.mutateBundles(ctx, action, bundles, func(*domain.GranularCertificateBundle) map[string]any {
		return map[string]any{"account_id": int64(*action.TargetID)}
	})
}

func (s *Service) cancelCertificates(ctx context.Context, action *domain.GranularCertificateAction) error {
	bundles, err := s.resolveBundles(ctx, action)
	if err != nil {
		return err
	}
	if err := requireStatuses(bundles, domain.ActionCancel, domain.StatusActive, domain.StatusReserved); err != nil {
		return err
	}

	return s.mutateBundles(ctx, action, bundles, func(*domain.GranularCertificateBundle) map[string]any {
		return map[string]any{
			"certificate_status": string(domain.StatusCancelled),
			"beneficiary":        action.Beneficiary,
		}
	})
}

func (s *Service) claimCertificates(ctx context.Context, action *domain.GranularCertificateAction) error {
	if action.Beneficiary == nil {
		return domain.ErrBeneficiaryRequired
	}

	bundles, err := s.resolveBundles(ctx, action)
	if err != nil {
		return err
	}
	if err := requireStatuses(bundles, domain.ActionClaim, domain.StatusCancelled); err != nil {
		return err
	}

	return s.mutateBundles(ctx, action, bundles, func(*domain.GranularCertificateBundle) map[string]any {
		return map[string]any{"certificate_status": string(domain.StatusClaimed)}
	})
}

func (s *Service) withdrawCertificates(ctx context.Context, action *domain.GranularCertificateAction) error {
	bundles, err := s.resolveBundles(ctx, action)
	if err != nil {
		return err
	}
	return s.mutateBundles(ctx, action, bundles, func(*domain.GranularCertificateBundle) map[string]any {
		return map[string]any{"certificate_status": string(domain.StatusWithdrawn)}
	})
}

func (s *Service) lockCertificates(ctx context.Context, action *domain.GranularCertificateAction) error {
	bundles, err := s.resolveBundles(ctx, action)
	if err != nil {
		return err
	}
	return s.mutateBundles(ctx, action, bundles, func(*domain.GranularCertificateBundle) map[string]any {
		return map[string]any{"certificate_status": string(domain.StatusLocked)}
	})
}

func (s *Service) reserveCertificates(ctx context.Context, action *domain.GranularCertificateAction) error {
	bundles, err := s.resolveBundles(ctx, action)
	if err != nil {
		return err
	}
	return s.mutateBundles(ctx, action, bundles, func(*domain.GranularCertificateBundle) map[string]any {
		return map[string]any{"certificate_status": string(domain.StatusReserved)}
	})
}
