package service

import (
	"context"
	"errors"

	"github.com/voltgrid/gc-registry/internal/certificate/domain"
	"github.com/voltgrid/gc-registry/internal/certificate/lineage"
	"github.com/voltgrid/gc-registry/internal/cqrs"
)

var (
	ErrSplitSizeZero     = errors.New("split_size_must_be_positive")
	ErrSplitSizeTooLarge = errors.New("split_size_must_be_less_than_bundle_quantity")
)

// Split divides a bundle into two children in one logical transaction and
// returns them. The first child carries sizeToSplit certificates, the second
// the remainder. Both keep the parent's issuance ID and hash-chain to the
// parent, which is marked as split and tombstoned.
func (s *Service) Split(ctx context.Context, parent *domain.GranularCertificateBundle, sizeToSplit int64) (*domain.GranularCertificateBundle, *domain.GranularCertificateBundle, error) {
	var child1, child2 *domain.GranularCertificateBundle
	err := s.cqrs.Transaction(ctx, func(sess *cqrs.Session) error {
		var err error
		child1, child2, err = s.splitBundle(sess, parent, sizeToSplit)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return child1, child2, nil
}

func (s *Service) splitBundle(sess *cqrs.Session, parent *domain.GranularCertificateBundle, sizeToSplit int64) (*domain.GranularCertificateBundle, *domain.GranularCertificateBundle, error) {
	if sizeToSplit <= 0 {
		return nil, nil, ErrSplitSizeZero
	}
	if sizeToSplit >= parent.BundleQuantity {
		return nil, nil, ErrSplitSizeTooLarge
	}

	child1 := parent.Clone()
	child1.ID = s.genID.Generate()
	child1.BundleQuantity = sizeToSplit
	child1.BundleIDRangeEnd = child1.BundleIDRangeStart + sizeToSplit
	child1.Hash = lineage.BundleHash(child1, parent.Hash)
	child1.CreatedAt = s.clock.Now()

	child2 := parent.Clone()
	child2.ID = s.genID.Generate()
	child2.BundleQuantity = parent.BundleQuantity - sizeToSplit
	child2.BundleIDRangeStart = child1.BundleIDRangeEnd + 1
	child2.Hash = lineage.BundleHash(child2, parent.Hash)
	child2.CreatedAt = s.clock.Now()

	// The parent stays in the table for lineage audits; it leaves circulation
	// as a split tombstone.
	parent.CertificateStatus = domain.StatusBundleSplit
	if err := sess.Delete(parent); err != nil {
		return nil, nil, err
	}

	if err := sess.Create(child1, child2); err != nil {
		return nil, nil, err
	}
	return child1, child2, nil
}
