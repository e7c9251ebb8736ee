package blockbodyvalidator

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/blssignatures"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
)

// conditionHash parses the condition argument at the given index as a 32-byte
// hash
func conditionHash(condition *externalapi.ConditionWithArgs, index int) (
	*externalapi.DomainHash, error) {

	if index >= len(condition.Vars) {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCondition,
			"condition %d is missing argument %d", condition.Opcode, index)
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(condition.Vars[index])
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCondition,
			"condition %d argument %d is not a hash: %s", condition.Opcode, index, err)
	}
	return hash, nil
}

func conditionBytes(condition *externalapi.ConditionWithArgs, index int) ([]byte, error) {
	if index >= len(condition.Vars) {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCondition,
			"condition %d is missing argument %d", condition.Opcode, index)
	}
	return condition.Vars[index], nil
}

// conditionAmount parses the condition argument at the given index as an
// unsigned amount. Generator programs emit amounts as minimal big-endian
// two's-complement integers; negative values and values beyond 64 bits are
// rejected.
func conditionAmount(condition *externalapi.ConditionWithArgs, index int) (uint64, error) {
	raw, err := conditionBytes(condition, index)
	if err != nil {
		return 0, err
	}
	if len(raw) > 0 && raw[0]&0x80 != 0 {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidCondition,
			"condition %d argument %d is a negative amount", condition.Opcode, index)
	}
	significant := raw
	for len(significant) > 0 && significant[0] == 0 {
		significant = significant[1:]
	}
	if len(significant) > 8 {
		return 0, errors.Wrapf(ruleerrors.ErrCoinAmountExceedsMaximum,
			"condition %d argument %d does not fit in 64 bits", condition.Opcode, index)
	}
	var amount uint64
	for _, b := range significant {
		amount = amount<<8 | uint64(b)
	}
	return amount, nil
}

// reserveFeeSum sums the amounts requested by RESERVE_FEE conditions across
// all spends
func reserveFeeSum(npcResult *externalapi.SpendBundleConditions) (uint64, error) {
	if npcResult == nil {
		return 0, nil
	}
	var sum uint64
	for _, spend := range npcResult.Spends {
		for _, condition := range spend.Conditions {
			if condition.Opcode != externalapi.ConditionReserveFee {
				continue
			}
			amount, err := conditionAmount(condition, 0)
			if err != nil {
				return 0, err
			}
			sum, err = addAmounts(sum, amount)
			if err != nil {
				return 0, err
			}
		}
	}
	return sum, nil
}

// checkConditions evaluates every assert-class condition of every spend
// against the candidate block's height and timestamp, the spent coin, and the
// announcements created within the block
func (v *blockBodyValidator) checkConditions(npcResult *externalapi.SpendBundleConditions,
	resolved map[externalapi.DomainHash]*resolvedCoin, height uint32, timestamp uint64) error {

	if npcResult == nil {
		return nil
	}

	coinAnnouncements, puzzleAnnouncements := collectAnnouncements(npcResult)
	for _, spend := range npcResult.Spends {
		spent := resolved[*spend.CoinID]
		for _, condition := range spend.Conditions {
			err := v.checkCondition(condition, spend, spent, height, timestamp,
				coinAnnouncements, puzzleAnnouncements)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// collectAnnouncements gathers the ids of every coin and puzzle announcement
// created within the block
func collectAnnouncements(npcResult *externalapi.SpendBundleConditions) (
	coinAnnouncements, puzzleAnnouncements map[externalapi.DomainHash]struct{}) {

	coinAnnouncements = make(map[externalapi.DomainHash]struct{})
	puzzleAnnouncements = make(map[externalapi.DomainHash]struct{})
	for _, spend := range npcResult.Spends {
		for _, condition := range spend.Conditions {
			if len(condition.Vars) < 1 {
				continue
			}
			switch condition.Opcode {
			case externalapi.ConditionCreateCoinAnnouncement:
				id := consensushashing.CoinAnnouncementID(spend.CoinID, condition.Vars[0])
				coinAnnouncements[*id] = struct{}{}
			case externalapi.ConditionCreatePuzzleAnnouncement:
				id := consensushashing.PuzzleAnnouncementID(spend.PuzzleHash, condition.Vars[0])
				puzzleAnnouncements[*id] = struct{}{}
			}
		}
	}
	return coinAnnouncements, puzzleAnnouncements
}

func (v *blockBodyValidator) checkCondition(condition *externalapi.ConditionWithArgs,
	spend *externalapi.SpendConditions, spent *resolvedCoin, height uint32, timestamp uint64,
	coinAnnouncements, puzzleAnnouncements map[externalapi.DomainHash]struct{}) error {

	switch condition.Opcode {
	case externalapi.ConditionAssertMyCoinID:
		asserted, err := conditionHash(condition, 0)
		if err != nil {
			return err
		}
		if !asserted.Equal(spend.CoinID) {
			return errors.Wrapf(ruleerrors.ErrAssertMyCoinIDFailed,
				"asserted coin id %s, spent coin is %s", asserted, spend.CoinID)
		}

	case externalapi.ConditionAssertMyParentID:
		asserted, err := conditionHash(condition, 0)
		if err != nil {
			return err
		}
		if !asserted.Equal(spent.coin.ParentCoinInfo) {
			return errors.Wrapf(ruleerrors.ErrAssertMyParentIDFailed,
				"asserted parent id %s, coin's parent is %s",
				asserted, spent.coin.ParentCoinInfo)
		}

	case externalapi.ConditionAssertMyPuzzleHash:
		asserted, err := conditionHash(condition, 0)
		if err != nil {
			return err
		}
		if !asserted.Equal(spent.coin.PuzzleHash) {
			return errors.Wrapf(ruleerrors.ErrAssertMyPuzzleHashFailed,
				"asserted puzzle hash %s, coin's puzzle hash is %s",
				asserted, spent.coin.PuzzleHash)
		}

	case externalapi.ConditionAssertMyAmount:
		asserted, err := conditionAmount(condition, 0)
		if err != nil {
			return err
		}
		if asserted != spent.coin.Amount {
			return errors.Wrapf(ruleerrors.ErrAssertMyAmountFailed,
				"asserted amount %d, coin's amount is %d", asserted, spent.coin.Amount)
		}

	case externalapi.ConditionAssertHeightAbsolute:
		asserted, err := conditionAmount(condition, 0)
		if err != nil {
			return err
		}
		if uint64(height) < asserted {
			return errors.Wrapf(ruleerrors.ErrAssertHeightAbsoluteFailed,
				"height lock %d not reached at height %d", asserted, height)
		}

	case externalapi.ConditionAssertHeightRelative:
		asserted, err := conditionAmount(condition, 0)
		if err != nil {
			return err
		}
		// A lock whose unlock height overflows can never be reached.
		unlockHeight, err := addAmounts(uint64(spent.confirmedHeight), asserted)
		if err != nil || uint64(height) < unlockHeight {
			return errors.Wrapf(ruleerrors.ErrAssertHeightRelativeFailed,
				"coin confirmed at height %d, lock of %d blocks not reached at height %d",
				spent.confirmedHeight, asserted, height)
		}

	case externalapi.ConditionAssertSecondsAbsolute:
		asserted, err := conditionAmount(condition, 0)
		if err != nil {
			return err
		}
		if timestamp < asserted {
			return errors.Wrapf(ruleerrors.ErrAssertSecondsAbsoluteFailed,
				"time lock %d not reached at block time %d", asserted, timestamp)
		}

	case externalapi.ConditionAssertSecondsRelative:
		asserted, err := conditionAmount(condition, 0)
		if err != nil {
			return err
		}
		unlockTime, err := addAmounts(spent.timestamp, asserted)
		if err != nil || timestamp < unlockTime {
			return errors.Wrapf(ruleerrors.ErrAssertSecondsRelativeFailed,
				"coin confirmed at time %d, lock of %d seconds not reached at block time %d",
				spent.timestamp, asserted, timestamp)
		}

	case externalapi.ConditionAssertCoinAnnouncement:
		asserted, err := conditionHash(condition, 0)
		if err != nil {
			return err
		}
		if _, ok := coinAnnouncements[*asserted]; !ok {
			return errors.Wrapf(ruleerrors.ErrAssertCoinAnnouncementFailed,
				"coin announcement %s was not created within the block", asserted)
		}

	case externalapi.ConditionAssertPuzzleAnnouncement:
		asserted, err := conditionHash(condition, 0)
		if err != nil {
			return err
		}
		if _, ok := puzzleAnnouncements[*asserted]; !ok {
			return errors.Wrapf(ruleerrors.ErrAssertPuzzleAnnouncementFailed,
				"puzzle announcement %s was not created within the block", asserted)
		}
	}

	// Unknown opcodes are ignored for forward compatibility; the executor
	// has already constrained the opcode space.
	return nil
}

// aggSigPairs derives the (public key, message) pairs the block's aggregate
// signature must cover. AGG_SIG_ME messages are bound to the spent coin and
// to the network through the additional data suffix.
func aggSigPairs(npcResult *externalapi.SpendBundleConditions,
	aggSigMeExtraData []byte) ([]*blssignatures.PublicKeyMessagePair, error) {

	if npcResult == nil {
		return nil, nil
	}

	var pairs []*blssignatures.PublicKeyMessagePair
	for _, spend := range npcResult.Spends {
		for _, condition := range spend.Conditions {
			switch condition.Opcode {
			case externalapi.ConditionAggSigUnsafe:
				publicKey, err := conditionBytes(condition, 0)
				if err != nil {
					return nil, err
				}
				message, err := conditionBytes(condition, 1)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, &blssignatures.PublicKeyMessagePair{
					PublicKey: publicKey,
					Message:   message,
				})

			case externalapi.ConditionAggSigMe:
				publicKey, err := conditionBytes(condition, 0)
				if err != nil {
					return nil, err
				}
				message, err := conditionBytes(condition, 1)
				if err != nil {
					return nil, err
				}
				boundMessage := bytes.Join([][]byte{
					message, spend.CoinID.ByteSlice(), aggSigMeExtraData}, nil)
				pairs = append(pairs, &blssignatures.PublicKeyMessagePair{
					PublicKey: publicKey,
					Message:   boundMessage,
				})
			}
		}
	}
	return pairs, nil
}
