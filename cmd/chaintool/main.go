// chaintool is a small operational tool over the durable consensus stores:
// it reports the chain tip, re-derives reward coins and re-verifies the
// declared commitments of stored blocks.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/datastructures/blockstore"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/datastructures/chainindex"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/datastructures/coinstore"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/config"
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/db/database/ldb"
)

const storeCacheSize = 1000

type stores struct {
	db         model.DBManager
	chainIndex model.ChainIndex
	blockStore blockstore.BlockStore
	coinStore  coinstore.CoinStore
}

// commandConfig is embedded by every subcommand; it resolves the shared
// options and opens the stores read path.
type commandConfig struct {
	cfg *config.Config
}

func (cc *commandConfig) openStores() (*stores, error) {
	err := cc.cfg.Resolve()
	if err != nil {
		return nil, err
	}
	db, err := ldb.NewLevelDB(cc.cfg.DBDir())
	if err != nil {
		return nil, err
	}
	blockStore := blockstore.New(db, storeCacheSize, false)
	return &stores{
		db:         db,
		chainIndex: chainindex.New(db, blockStore, storeCacheSize, false),
		blockStore: blockStore,
		coinStore:  coinstore.New(db, storeCacheSize, false),
	}, nil
}

func (s *stores) close() {
	err := s.db.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error closing the database: %s\n", err)
	}
}

func main() {
	cfg := &config.Config{Flags: config.DefaultFlags()}
	parser := flags.NewParser(cfg.Flags, flags.HelpFlag)

	_, _ = parser.AddCommand("tip", "Show the chain tip",
		"Show the heaviest committed block record", &tipCommand{commandConfig{cfg}})
	_, _ = parser.AddCommand("rewards", "Derive reward coins",
		"Re-derive the pool and farmer reward coins owed for a block height",
		&rewardsCommand{commandConfig: commandConfig{cfg}})
	_, _ = parser.AddCommand("verify", "Verify stored block commitments",
		"Re-verify the declared hashes and generator commitments of stored blocks",
		&verifyCommand{commandConfig: commandConfig{cfg}})

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
