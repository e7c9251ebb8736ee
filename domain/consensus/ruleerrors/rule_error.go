package ruleerrors

import (
	"fmt"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrNotBlockButHasData indicates a non-transaction block that carries
	// transaction-related fields
	ErrNotBlockButHasData = newRuleError("ErrNotBlockButHasData")

	// ErrIsTransactionBlockButNoData indicates a transaction block that is
	// missing its foliage-transaction-block, transactions info or generator
	ErrIsTransactionBlockButNoData = newRuleError("ErrIsTransactionBlockButNoData")

	// ErrInvalidFoliageBlockHash indicates the foliage's declared
	// transaction-block hash does not match the foliage transaction block
	ErrInvalidFoliageBlockHash = newRuleError("ErrInvalidFoliageBlockHash")

	// ErrInvalidTransactionsInfoHash indicates the declared transactions-info
	// hash does not match the transactions info
	ErrInvalidTransactionsInfoHash = newRuleError("ErrInvalidTransactionsInfoHash")

	// ErrInvalidRewardCoins indicates the incorporated reward claims do not
	// match the reward coins owed since the previous transaction block
	ErrInvalidRewardCoins = newRuleError("ErrInvalidRewardCoins")

	// ErrInvalidTransactionsGeneratorHash indicates the declared generator
	// root does not match the hash of the serialized generator
	ErrInvalidTransactionsGeneratorHash = newRuleError("ErrInvalidTransactionsGeneratorHash")

	// ErrInvalidTransactionsGeneratorRefsRoot indicates the declared
	// generator-refs root does not match the reference list
	ErrInvalidTransactionsGeneratorRefsRoot = newRuleError("ErrInvalidTransactionsGeneratorRefsRoot")

	// ErrTooManyGeneratorRefs indicates the generator reference list exceeds
	// the configured maximum
	ErrTooManyGeneratorRefs = newRuleError("ErrTooManyGeneratorRefs")

	// ErrGeneratorRuntimeError indicates the transaction generator program
	// failed during execution
	ErrGeneratorRuntimeError = newRuleError("ErrGeneratorRuntimeError")

	// ErrBlockCostExceedsMax indicates the generator's execution cost exceeds
	// the maximum block cost
	ErrBlockCostExceedsMax = newRuleError("ErrBlockCostExceedsMax")

	// ErrInvalidBlockCost indicates the declared cost does not match the
	// computed execution cost
	ErrInvalidBlockCost = newRuleError("ErrInvalidBlockCost")

	// ErrCoinAmountExceedsMaximum indicates a created coin's amount exceeds
	// the protocol maximum
	ErrCoinAmountExceedsMaximum = newRuleError("ErrCoinAmountExceedsMaximum")

	// ErrCoinAmountOverflow indicates amount arithmetic overflowed 64 bits
	ErrCoinAmountOverflow = newRuleError("ErrCoinAmountOverflow")

	// ErrBadAdditionRoot indicates the recomputed additions Merkle-set root
	// does not match the declared root
	ErrBadAdditionRoot = newRuleError("ErrBadAdditionRoot")

	// ErrBadRemovalRoot indicates the recomputed removals Merkle-set root
	// does not match the declared root
	ErrBadRemovalRoot = newRuleError("ErrBadRemovalRoot")

	// ErrInvalidTransactionsFilterHash indicates the recomputed transaction
	// filter does not hash to the declared filter hash
	ErrInvalidTransactionsFilterHash = newRuleError("ErrInvalidTransactionsFilterHash")

	// ErrDuplicateOutput indicates two coins with the same id are created
	// within one block
	ErrDuplicateOutput = newRuleError("ErrDuplicateOutput")

	// ErrDoubleSpend indicates a coin is spent twice, either within the block
	// or against the durable coin set
	ErrDoubleSpend = newRuleError("ErrDoubleSpend")

	// ErrDoubleSpendInFork indicates a coin was already spent by a block
	// between the fork point and this block
	ErrDoubleSpendInFork = newRuleError("ErrDoubleSpendInFork")

	// ErrUnknownUnspent indicates a removed coin is not visible as unspent
	// from this block's position in the chain
	ErrUnknownUnspent = newRuleError("ErrUnknownUnspent")

	// ErrMintingCoin indicates the block creates more value than it removes
	ErrMintingCoin = newRuleError("ErrMintingCoin")

	// ErrReserveFeeConditionFailed indicates a RESERVE_FEE condition asks for
	// more than the block's actual fees
	ErrReserveFeeConditionFailed = newRuleError("ErrReserveFeeConditionFailed")

	// ErrInvalidBlockFeeAmount indicates the declared fees do not match
	// removals minus additions
	ErrInvalidBlockFeeAmount = newRuleError("ErrInvalidBlockFeeAmount")

	// ErrWrongPuzzleHash indicates a spend's executed puzzle hash does not
	// match the stored coin's puzzle hash
	ErrWrongPuzzleHash = newRuleError("ErrWrongPuzzleHash")

	// ErrAssertHeightAbsoluteFailed indicates an absolute-height time lock is
	// not yet satisfied
	ErrAssertHeightAbsoluteFailed = newRuleError("ErrAssertHeightAbsoluteFailed")

	// ErrAssertHeightRelativeFailed indicates a relative-height time lock is
	// not yet satisfied
	ErrAssertHeightRelativeFailed = newRuleError("ErrAssertHeightRelativeFailed")

	// ErrAssertSecondsAbsoluteFailed indicates an absolute-seconds time lock
	// is not yet satisfied
	ErrAssertSecondsAbsoluteFailed = newRuleError("ErrAssertSecondsAbsoluteFailed")

	// ErrAssertSecondsRelativeFailed indicates a relative-seconds time lock
	// is not yet satisfied
	ErrAssertSecondsRelativeFailed = newRuleError("ErrAssertSecondsRelativeFailed")

	// ErrAssertCoinAnnouncementFailed indicates an asserted coin announcement
	// was not created within the block
	ErrAssertCoinAnnouncementFailed = newRuleError("ErrAssertCoinAnnouncementFailed")

	// ErrAssertPuzzleAnnouncementFailed indicates an asserted puzzle
	// announcement was not created within the block
	ErrAssertPuzzleAnnouncementFailed = newRuleError("ErrAssertPuzzleAnnouncementFailed")

	// ErrAssertMyCoinIDFailed indicates an ASSERT_MY_COIN_ID condition does
	// not match the spent coin
	ErrAssertMyCoinIDFailed = newRuleError("ErrAssertMyCoinIDFailed")

	// ErrAssertMyParentIDFailed indicates an ASSERT_MY_PARENT_ID condition
	// does not match the spent coin
	ErrAssertMyParentIDFailed = newRuleError("ErrAssertMyParentIDFailed")

	// ErrAssertMyPuzzleHashFailed indicates an ASSERT_MY_PUZZLEHASH condition
	// does not match the spent coin
	ErrAssertMyPuzzleHashFailed = newRuleError("ErrAssertMyPuzzleHashFailed")

	// ErrAssertMyAmountFailed indicates an ASSERT_MY_AMOUNT condition does
	// not match the spent coin
	ErrAssertMyAmountFailed = newRuleError("ErrAssertMyAmountFailed")

	// ErrInvalidCondition indicates a condition's arguments are malformed
	ErrInvalidCondition = newRuleError("ErrInvalidCondition")

	// ErrBadAggregateSignature indicates the aggregated BLS signature does
	// not verify against the collected public-key/message pairs
	ErrBadAggregateSignature = newRuleError("ErrBadAggregateSignature")

	// ErrMissingGenerator indicates a generator reference points at a block
	// that carries no generator
	ErrMissingGenerator = newRuleError("ErrMissingGenerator")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrMissingCoins indicates coins referenced by removals that either do not
// exist or are not visible from the validated block's chain position.
type ErrMissingCoins struct {
	MissingCoinIDs []*externalapi.DomainHash
}

func (e ErrMissingCoins) Error() string {
	return fmt.Sprintf("missing the following coins: %v", e.MissingCoinIDs)
}

// NewErrMissingCoins creates a new ErrMissingCoins error wrapped in a RuleError
func NewErrMissingCoins(missingCoinIDs []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrUnknownUnspent",
		inner:   ErrMissingCoins{missingCoinIDs},
	})
}
