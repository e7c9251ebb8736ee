package externalapi

// ConditionOpcode identifies a condition emitted by a puzzle when spent
type ConditionOpcode uint8

// Condition opcodes. The numbering is consensus data: it is what generator
// programs emit on the wire.
const (
	ConditionAggSigUnsafe ConditionOpcode = 49
	ConditionAggSigMe     ConditionOpcode = 50

	ConditionCreateCoin ConditionOpcode = 51
	ConditionReserveFee ConditionOpcode = 52

	ConditionCreateCoinAnnouncement   ConditionOpcode = 60
	ConditionAssertCoinAnnouncement   ConditionOpcode = 61
	ConditionCreatePuzzleAnnouncement ConditionOpcode = 62
	ConditionAssertPuzzleAnnouncement ConditionOpcode = 63

	ConditionAssertMyCoinID     ConditionOpcode = 70
	ConditionAssertMyParentID   ConditionOpcode = 71
	ConditionAssertMyPuzzleHash ConditionOpcode = 72
	ConditionAssertMyAmount     ConditionOpcode = 73

	ConditionAssertSecondsRelative ConditionOpcode = 80
	ConditionAssertSecondsAbsolute ConditionOpcode = 81
	ConditionAssertHeightRelative  ConditionOpcode = 82
	ConditionAssertHeightAbsolute  ConditionOpcode = 83
)

// ConditionWithArgs is a single opcode/arguments pair produced by executing
// a spend's puzzle
type ConditionWithArgs struct {
	Opcode ConditionOpcode
	Vars   [][]byte
}

// SpendConditions is the named-puzzle-conditions result for one spent coin:
// the coin's id, the hash of the puzzle that was actually executed, and the
// conditions the puzzle produced.
type SpendConditions struct {
	CoinID     *DomainHash
	PuzzleHash *DomainHash
	Conditions []*ConditionWithArgs
}

// SpendBundleConditions is the full result of running a block's transaction
// generator: one SpendConditions per spent coin plus the total execution
// cost. ErrorCode is set when the generator program itself failed; a block
// carrying such a generator is invalid.
type SpendBundleConditions struct {
	Spends    []*SpendConditions
	Cost      uint64
	ErrorCode *uint16
}
