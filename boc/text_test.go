package boc

import (
	"strings"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"gotest.tools/v3/assert"
)

func TestHexAndBase64(t *testing.T) {
	root := sampleDAG(t)

	h, err := ToHex(root)
	assert.NilError(t, err)
	assert.Equal(t, h, strings.ToUpper(h))

	fromHex, err := FromHex(h)
	assert.NilError(t, err)
	assert.Equal(t, fromHex.Hash(), root.Hash())

	// spacing and case are not significant
	spaced := strings.ToLower(h[:8]) + " \n" + h[8:]
	again, err := FromHex(spaced)
	assert.NilError(t, err)
	assert.Equal(t, again.Hash(), root.Hash())

	b64, err := ToBase64(root, WithIndex(false))
	assert.NilError(t, err)
	fromB64, err := FromBase64(b64 + "\n")
	assert.NilError(t, err)
	assert.Equal(t, fromB64.Hash(), root.Hash())
}

func TestTextRejectsBadEncoding(t *testing.T) {
	_, err := FromHex("B5EE9C7")
	assert.ErrorIs(t, err, ErrMalformedHeader)

	_, err = FromBase64("not base64!")
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestWalletCodeFromBase64(t *testing.T) {
	c, err := FromHex(walletV3R2Code)
	assert.NilError(t, err)

	b64, err := ToBase64(c, WithIndex(false), WithCRC32C(true))
	assert.NilError(t, err)
	assert.Equal(t, b64[:4], "te6c")

	c2, err := FromBase64(b64)
	assert.NilError(t, err)
	assert.Equal(t, hexHash(c2), walletV3R2Hash)
}

func TestOptions(t *testing.T) {
	o := NewOptions()
	assert.Check(t, o.Index)
	assert.Check(t, o.CRC32C)
	assert.Check(t, !o.CacheBits)

	o = NewOptions(WithFlags(0xff), WithIndex(false))
	assert.Equal(t, o.Flags, uint8(3))
	assert.Check(t, !o.Index)
}

func TestLoggingDoesNotChangeOutput(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	root := sampleDAG(t)
	quiet, err := Serialize(root)
	assert.NilError(t, err)
	logged, err := Serialize(root, WithLogger(logger.Sugar.WithServiceName("boc-test")))
	assert.NilError(t, err)
	assert.DeepEqual(t, quiet, logged)

	_, err = Deserialize(logged, WithLogger(logger.Sugar.WithServiceName("boc-test")))
	assert.NilError(t, err)
}
