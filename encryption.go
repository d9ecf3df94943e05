package heed

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// encryptionHook adapts the engine's single encrypt/decrypt C-ABI
// callback (spec.md §4.9) to a user-selected AEAD. The engine always
// hands the callback a 16-byte nonce slot; algorithms that need fewer
// bytes get it truncated down to size.
type encryptionHook struct {
	algo  AEADAlgorithm
	aead  cipher.AEAD
	nonce int
}

func requiredKeyLen(algo AEADAlgorithm) int {
	switch algo {
	case AEADChaCha20Poly1305:
		return chacha20poly1305.KeySize
	case AEADAES256GCM:
		return 32
	default:
		return 0
	}
}

func validateEncryptionKey(algo AEADAlgorithm, key []byte) error {
	want := requiredKeyLen(algo)
	if want == 0 {
		return fmt.Errorf("unsupported AEAD algorithm %d", algo)
	}
	if len(key) != want {
		return fmt.Errorf("key must be %d bytes for this algorithm, got %d", want, len(key))
	}
	return nil
}

func newEncryptionHook(algo AEADAlgorithm, key []byte) (*encryptionHook, error) {
	if err := validateEncryptionKey(algo, key); err != nil {
		return nil, err
	}
	var aead cipher.AEAD
	var err error
	switch algo {
	case AEADChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key)
	case AEADAES256GCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("unsupported AEAD algorithm %d", algo)
	}
	if err != nil {
		return nil, err
	}
	return &encryptionHook{algo: algo, aead: aead, nonce: aead.NonceSize()}, nil
}

// engineCallback is the shape the engine binding invokes per page: src
// is the plaintext (encrypt direction) or ciphertext (decrypt
// direction), dst receives the result, nonceMaterial is the engine's
// fixed-size nonce/IV buffer (truncated here to the algorithm's actual
// nonce size), and encrypt selects direction. Returns nil on success,
// matching spec.md §4.9's "0 on success, 1 on failure" contract folded
// into a Go error the binding layer maps back to an int.
func (h *encryptionHook) engineCallback(src, dst, nonceMaterial []byte, encrypt bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encryption hook panicked: %v", r)
		}
	}()

	if len(nonceMaterial) < h.nonce {
		return fmt.Errorf("encryption hook: nonce material too short")
	}
	nonce := nonceMaterial[:h.nonce]

	if encrypt {
		out := h.aead.Seal(dst[:0], nonce, src, nil)
		if &out[0] != &dst[0] {
			copy(dst, out)
		}
		return nil
	}

	out, err := h.aead.Open(dst[:0], nonce, src, nil)
	if err != nil {
		return fmt.Errorf("encryption hook: decrypt failed: %w", err)
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return nil
}
