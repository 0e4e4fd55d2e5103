// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"bondigo/internal/catalog"
	"bondigo/internal/gacha"
	"bondigo/internal/model"
	"bondigo/internal/pkg/lock"
	"bondigo/internal/progression"
	"bondigo/internal/repository"
)

// Reward engine errors. All are expected, recoverable-by-caller conditions
// returned as explicit values, never silent no-ops.
var (
	ErrInsufficientFunds     = errors.New("not enough tokens")
	ErrAlreadyOwned          = errors.New("companion already owned")
	ErrNoCompanionsAvailable = gacha.ErrNoCompanionsAvailable
	ErrUserNotFound          = repository.ErrUserNotFound
	ErrCompanionNotFound     = errors.New("companion not found")
	ErrDuplicateOwnership    = repository.ErrDuplicateOwnership
	ErrUnknownTier           = gacha.ErrUnknownTier
)

// RevealInfo is the one-time reveal payload for a mystery acquisition.
// Informational only: computing it changes nothing but the revealed flag.
type RevealInfo struct {
	CompanionID    string               `json:"companion_id"`
	Name           string               `json:"name"`
	Rarity         string               `json:"rarity"`
	MysteryTier    string               `json:"mystery_tier"`
	ExpectedRarity string               `json:"expected_rarity"`
	SurpriseFactor gacha.SurpriseFactor `json:"surprise_factor"`
}

// RewardService is the companion reward engine: gacha purchases, wallet
// operations, bond XP, and collection scoring. Stateless between calls;
// all durable state lives in the store.
type RewardService struct {
	cat       *catalog.Catalog
	roller    *gacha.Roller
	userRepo  *repository.UserRepository
	ownRepo   *repository.OwnershipRepository
	bondRepo  *repository.BondRepository
	txRepo    *repository.TransactionRepository
	userLock  *lock.UserLock
	airdrop   int64
	airdropHr int
	starting  int64
}

// Config holds the economy knobs of the reward engine.
type Config struct {
	AirdropAmount  int64
	AirdropHours   int
	StartingTokens int64
}

// NewRewardService creates a new RewardService instance.
func NewRewardService(
	cat *catalog.Catalog,
	roller *gacha.Roller,
	userRepo *repository.UserRepository,
	ownRepo *repository.OwnershipRepository,
	bondRepo *repository.BondRepository,
	txRepo *repository.TransactionRepository,
	userLock *lock.UserLock,
	cfg Config,
) *RewardService {
	return &RewardService{
		cat:       cat,
		roller:    roller,
		userRepo:  userRepo,
		ownRepo:   ownRepo,
		bondRepo:  bondRepo,
		txRepo:    txRepo,
		userLock:  userLock,
		airdrop:   cfg.AirdropAmount,
		airdropHr: cfg.AirdropHours,
		starting:  cfg.StartingTokens,
	}
}

// Catalog exposes the loaded companion catalog to the presentation layer.
func (s *RewardService) Catalog() *catalog.Catalog {
	return s.cat
}

// EnsureUser ensures a user exists, creating one with the starting balance
// if necessary. Returns the user and whether it was newly created.
func (s *RewardService) EnsureUser(ctx context.Context, id, username string) (*model.User, bool, error) {
	user, created, err := s.userRepo.GetOrCreate(ctx, id, username, s.starting)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	if created {
		desc := "starting balance"
		if _, err := s.txRepo.Create(ctx, id, s.starting, model.TxTypeInitial, nil, &desc); err != nil {
			log.Error().Err(err).Str("user_id", id).Msg("Failed to record initial transaction")
		}
		return user, true, nil
	}

	// Propagate username changes from the auth layer.
	if user.Username != username && username != "" {
		if err := s.userRepo.UpdateUsername(ctx, id, username); err != nil {
			log.Warn().Err(err).Str("user_id", id).Msg("Failed to update username")
		} else {
			user.Username = username
		}
	}
	return user, false, nil
}

// GetUser retrieves a user by ID.
func (s *RewardService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByUsername retrieves a user by the unique username.
func (s *RewardService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// ApplyDailyAirdrop credits the daily grant if 24 hours have passed since
// the later of the last grant and account creation. Idempotent within the
// window: the cutoff comparison runs against the freshest stored timestamp
// inside the update, never a copy read earlier in the request.
func (s *RewardService) ApplyDailyAirdrop(ctx context.Context, userID string) (*model.User, bool, error) {
	cutoff := nowFunc().Add(-s.airdropWindow())
	user, granted, err := s.userRepo.ApplyAirdrop(ctx, userID, s.airdrop, cutoff)
	if err != nil {
		return nil, false, err
	}
	if granted {
		desc := "daily airdrop"
		if _, err := s.txRepo.Create(ctx, userID, s.airdrop, model.TxTypeAirdrop, nil, &desc); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to record airdrop transaction")
		}
		log.Info().Str("user_id", userID).Int64("amount", s.airdrop).Msg("Daily airdrop granted")
	}
	return user, granted, nil
}

// PurchaseMystery buys one unrevealed companion under the given tier.
// On success the price is debited, an unrevealed ownership record exists,
// and the collection score has been recomputed.
func (s *RewardService) PurchaseMystery(ctx context.Context, userID string, tier gacha.Tier) (*catalog.Companion, *model.User, error) {
	cfg, ok := gacha.GetTier(tier)
	if !ok {
		return nil, nil, ErrUnknownTier
	}

	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.Tokens < cfg.Price {
		return nil, nil, ErrInsufficientFunds
	}

	ownedIDs, err := s.ownRepo.ListCompanionIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	excluded := make(map[string]struct{}, len(ownedIDs))
	for _, id := range ownedIDs {
		excluded[id] = struct{}{}
	}

	comp, err := s.roller.Roll(tier, excluded)
	if err != nil {
		return nil, nil, err
	}

	user, err = s.completePurchase(ctx, userID, comp, cfg, false, model.TxTypeMysteryPurchase)
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("user_id", userID).
		Str("tier", string(tier)).
		Str("companion_id", comp.ID).
		Msg("Mystery bond purchased")
	return comp, user, nil
}

// PurchaseSpecific buys a named companion at the price implied by its
// rarity's tier equivalent. The ownership record is created already
// revealed; no surprise factor applies.
func (s *RewardService) PurchaseSpecific(ctx context.Context, userID, companionID string) (*model.User, error) {
	comp, ok := s.cat.Get(companionID)
	if !ok {
		return nil, ErrCompanionNotFound
	}
	cfg := gacha.TierForRarity(comp.Rarity())

	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	owned, err := s.ownRepo.Exists(ctx, userID, companionID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, ErrAlreadyOwned
	}

	user, err := s.completePurchase(ctx, userID, comp, cfg, true, model.TxTypeSpecificPurchase)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID).
		Str("companion_id", companionID).
		Int64("price", cfg.Price).
		Msg("Specific bond purchased")
	return user, nil
}

// completePurchase runs the debit-then-grant sequence shared by both
// purchase paths: conditional debit, ledger entry, ownership insert,
// collection rescore. A grant failure after the debit is logged and left
// for the reconciliation sweep; it is never swallowed.
func (s *RewardService) completePurchase(ctx context.Context, userID string, comp *catalog.Companion, cfg gacha.TierConfig, revealed bool, txType string) (*model.User, error) {
	user, err := s.userRepo.DebitTokens(ctx, userID, cfg.Price)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientTokens) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	compID := comp.ID
	desc := string(cfg.Tier)
	if _, err := s.txRepo.Create(ctx, userID, -cfg.Price, txType, &compID, &desc); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("companion_id", compID).Msg("Failed to record purchase transaction")
	}

	if _, err := s.ownRepo.Insert(ctx, userID, comp.ID, revealed, string(cfg.Tier)); err != nil {
		// Debited but not granted. The ledger row above is what the
		// reconciliation sweep keys on to issue the refund.
		log.Error().Err(err).
			Str("user_id", userID).
			Str("companion_id", comp.ID).
			Msg("Purchase debited but ownership grant failed")
		return nil, err
	}

	user, err = s.rescoreCollection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// rescoreCollection recomputes the collection score from the full owned set
// and persists score, level, and title together.
func (s *RewardService) rescoreCollection(ctx context.Context, userID string) (*model.User, error) {
	ownedIDs, err := s.ownRepo.ListCompanionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned, err := s.cat.Resolve(ownedIDs)
	if err != nil {
		return nil, err
	}

	breakdown := progression.ScoreCollection(owned)
	level, title := progression.CollectionLevelFor(breakdown.Total)
	return s.userRepo.SetCollectionScore(ctx, userID, breakdown.Total, level, title)
}

// GetCollectionScore recomputes the score fresh from the owned set and
// returns the full breakdown. The breakdown is user-facing: the caller
// explains the score with it.
func (s *RewardService) GetCollectionScore(ctx context.Context, userID string) (progression.CollectionBreakdown, error) {
	if exists, err := s.userRepo.Exists(ctx, userID); err != nil {
		return progression.CollectionBreakdown{}, err
	} else if !exists {
		return progression.CollectionBreakdown{}, ErrUserNotFound
	}

	ownedIDs, err := s.ownRepo.ListCompanionIDs(ctx, userID)
	if err != nil {
		return progression.CollectionBreakdown{}, err
	}
	owned, err := s.cat.Resolve(ownedIDs)
	if err != nil {
		return progression.CollectionBreakdown{}, err
	}
	return progression.ScoreCollection(owned), nil
}

// AwardChatXP awards bond XP for one user-authored message of the given
// character length, updating the per-companion bond counters and the
// user's XP, level, and title in the same pass. Returns the XP awarded.
func (s *RewardService) AwardChatXP(ctx context.Context, userID, companionID string, messageLength int) (int64, error) {
	if _, ok := s.cat.Get(companionID); !ok {
		return 0, ErrCompanionNotFound
	}

	xp := progression.MessageXP(messageLength)

	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	// The increment doubles as the user-existence check.
	user, err := s.userRepo.AddBondXP(ctx, userID, xp)
	if err != nil {
		return 0, err
	}

	if _, err := s.bondRepo.RecordMessage(ctx, userID, companionID, xp); err != nil {
		return 0, err
	}

	// Level and title derive from the value the increment returned; the
	// guarded write leaves them to a later award if one overtook this one.
	level, title := progression.BondLevelFor(user.BondXP)
	if err := s.userRepo.SetBondLevel(ctx, userID, user.BondXP, level, title); err != nil {
		return 0, err
	}
	return xp, nil
}

// RevealIfNeeded performs the one-way Hidden→Revealed transition on first
// chat entry after a mystery purchase. Returns nil when the ownership is
// already revealed. The surprise factor is computed once, here, and alters
// nothing beyond the revealed flag.
func (s *RewardService) RevealIfNeeded(ctx context.Context, userID, companionID string) (*RevealInfo, error) {
	comp, ok := s.cat.Get(companionID)
	if !ok {
		return nil, ErrCompanionNotFound
	}

	own, err := s.ownRepo.Get(ctx, userID, companionID)
	if err != nil {
		return nil, err
	}
	if own.Revealed {
		return nil, nil
	}

	flipped, err := s.ownRepo.MarkRevealed(ctx, userID, companionID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// Another session revealed it between the read and the update.
		return nil, nil
	}

	tier, _ := gacha.GetTier(gacha.Tier(own.MysteryTier))
	actual := comp.Rarity()
	info := &RevealInfo{
		CompanionID:    comp.ID,
		Name:           comp.Name,
		Rarity:         actual.String(),
		MysteryTier:    own.MysteryTier,
		ExpectedRarity: tier.Expected.String(),
		SurpriseFactor: gacha.Surprise(actual, tier.Expected),
	}
	log.Info().
		Str("user_id", userID).
		Str("companion_id", companionID).
		Str("surprise", string(info.SurpriseFactor)).
		Msg("Companion revealed")
	return info, nil
}

// GetCollection returns the user's ownership records.
func (s *RewardService) GetCollection(ctx context.Context, userID string) ([]*model.Ownership, error) {
	return s.ownRepo.List(ctx, userID)
}

// GetBond returns the engagement counters for one companion, or
// repository.ErrBondNotFound before the first message.
func (s *RewardService) GetBond(ctx context.Context, userID, companionID string) (*model.CompanionBond, error) {
	return s.bondRepo.Get(ctx, userID, companionID)
}

// nowFunc is swapped out in tests to pin the airdrop clock.
var nowFunc = time.Now

func (s *RewardService) airdropWindow() time.Duration {
	return time.Duration(s.airdropHr) * time.Hour
}
