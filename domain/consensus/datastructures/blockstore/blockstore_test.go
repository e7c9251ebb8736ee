package blockstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/db/database/ldb"
)

func testHash(b byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	for i := range hashBytes {
		hashBytes[i] = b
	}
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func testTransactionBlock(name byte, height uint32) *externalapi.FullBlock {
	return &externalapi.FullBlock{
		Foliage: &externalapi.Foliage{
			PrevBlockHash:                    testHash(name),
			RewardBlockHash:                  testHash('w'),
			FoliageTransactionBlockHash:      testHash('t'),
			FoliageTransactionBlockSignature: []byte("signature"),
		},
		FoliageTransactionBlock: &externalapi.FoliageTransactionBlock{
			PrevTransactionBlockHash: testHash(name),
			Timestamp:                1234,
			FilterHash:               testHash('f'),
			AdditionsRoot:            testHash('a'),
			RemovalsRoot:             testHash('r'),
			TransactionsInfoHash:     testHash('i'),
		},
		TransactionsInfo: &externalapi.TransactionsInfo{
			GeneratorRoot:     testHash('g'),
			GeneratorRefsRoot: testHash('e'),
			Fees:              50,
			Cost:              9000,
			RewardClaimsIncorporated: []*externalapi.Coin{
				externalapi.NewCoin(testHash('c'), testHash('p'), 1000),
			},
		},
		TransactionsGenerator:        []byte("generator program"),
		TransactionsGeneratorRefList: []uint32{3, 7},
		Height:                       height,
	}
}

func TestStoreAndGetBlock(t *testing.T) {
	db, err := ldb.NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	store := New(db, 10, false)
	block := testTransactionBlock('1', 5)
	headerHash := consensushashing.HeaderHash(block.Foliage)

	_, found, err := store.GetFullBlock(headerHash)
	require.NoError(t, err)
	require.False(t, found)

	has, err := store.HasBlock(headerHash)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, store.StoreBlock(block))

	got, found, err := store.GetFullBlock(headerHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, block.Height, got.Height)
	require.Equal(t, block.TransactionsGenerator, got.TransactionsGenerator)
	require.Equal(t, block.TransactionsGeneratorRefList, got.TransactionsGeneratorRefList)
	require.True(t, got.Foliage.PrevBlockHash.Equal(block.Foliage.PrevBlockHash))
	require.Equal(t, block.FoliageTransactionBlock.Timestamp, got.FoliageTransactionBlock.Timestamp)
	require.Equal(t, block.TransactionsInfo.Cost, got.TransactionsInfo.Cost)
	require.Len(t, got.TransactionsInfo.RewardClaimsIncorporated, 1)
	require.True(t, got.TransactionsInfo.RewardClaimsIncorporated[0].Equal(
		block.TransactionsInfo.RewardClaimsIncorporated[0]))

	has, err = store.HasBlock(headerHash)
	require.NoError(t, err)
	require.True(t, has)
}

func TestGetBlockSurvivesStoreRestart(t *testing.T) {
	db, err := ldb.NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	block := testTransactionBlock('1', 5)
	headerHash := consensushashing.HeaderHash(block.Foliage)
	require.NoError(t, New(db, 10, false).StoreBlock(block))

	// A fresh store over the same database starts with a cold cache.
	reopened := New(db, 10, false)
	got, found, err := reopened.GetFullBlock(headerHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, block.Height, got.Height)
	require.Equal(t, block.TransactionsGenerator, got.TransactionsGenerator)

	has, err := reopened.HasBlock(headerHash)
	require.NoError(t, err)
	require.True(t, has)
}

func TestStoreNonTransactionBlock(t *testing.T) {
	db, err := ldb.NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	store := New(db, 10, false)
	block := &externalapi.FullBlock{
		Foliage: &externalapi.Foliage{
			PrevBlockHash:   testHash('1'),
			RewardBlockHash: testHash('w'),
		},
		Height: 3,
	}
	headerHash := consensushashing.HeaderHash(block.Foliage)
	require.NoError(t, store.StoreBlock(block))

	reopened := New(db, 10, false)
	got, found, err := reopened.GetFullBlock(headerHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Nil(t, got.FoliageTransactionBlock)
	require.Nil(t, got.TransactionsInfo)
	require.Nil(t, got.TransactionsGenerator)
	require.False(t, got.IsTransactionBlock())
	require.Equal(t, uint32(3), got.Height)
}
