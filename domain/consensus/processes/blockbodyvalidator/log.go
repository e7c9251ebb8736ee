package blockbodyvalidator

import (
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BBVL")
