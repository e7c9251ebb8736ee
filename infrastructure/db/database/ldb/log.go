package ldb

import (
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LVDB")
