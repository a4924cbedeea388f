package token

import (
	"strings"

	"furiousfive-server/internal/rng"
)

const roomCodePrefix = "FF-"
const roomCodeLength = 6
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var source rng.Generator = rng.Crypto{}

// RoomCode returns a human-shareable room code: a fixed "FF-" prefix followed
// by six random characters drawn from uppercase letters and digits.
func RoomCode() string {
	var sb strings.Builder
	sb.WriteString(roomCodePrefix)
	for i := 0; i < roomCodeLength; i++ {
		sb.WriteByte(roomCodeAlphabet[source.Intn(len(roomCodeAlphabet))])
	}

	return sb.String()
}
