package util

import (
	"crypto/md5"
	"encoding/hex"
)

func MD5Hex(data []byte) string {
	sum := md5.Sum(data)

	return hex.EncodeToString(sum[:])
}
