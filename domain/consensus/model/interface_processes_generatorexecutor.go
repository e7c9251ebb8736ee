package model

import "github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"

// GeneratorExecutor deterministically runs a block's transaction-generator
// program and reports the spends it produces. The execution engine itself is
// outside consensus-core scope; from here it is a black box that either
// returns the named puzzle conditions for every spent coin or an error.
type GeneratorExecutor interface {
	// Run executes generatorBytes with the given referenced prior
	// generators, failing if execution cost exceeds maxCost. The returned
	// SpendBundleConditions carries the actual cost. A program-level
	// failure is reported through SpendBundleConditions.ErrorCode; an
	// error return means the executor itself could not run.
	Run(generatorBytes []byte, refGenerators [][]byte, maxCost uint64,
		height uint32) (*externalapi.SpendBundleConditions, error)
}
