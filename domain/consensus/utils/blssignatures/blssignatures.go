// Package blssignatures verifies the BLS12-381 aggregate signatures that
// authorize a block's spends. Public keys live in G1 (48 bytes compressed),
// signatures in G2 (96 bytes compressed). The scheme is message-augmented:
// the signed point is the hash-to-G2 of the signer's public key prepended to
// the message, so two signers can't be tricked into signing each other's
// messages.
package blssignatures

import (
	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/util/random"
	"github.com/pkg/errors"
)

var pairing = bls.NewBLS12381Suite()

// PublicKeySize is the size of a compressed G1 public key
const PublicKeySize = 48

// SignatureSize is the size of a compressed G2 signature
const SignatureSize = 96

// PublicKeyMessagePair is one (public key, message) pair an aggregate
// signature must cover
type PublicKeyMessagePair struct {
	PublicKey []byte
	Message   []byte
}

// PublicKeyFromBytes unmarshals a compressed G1 public key
func PublicKeyFromBytes(publicKeyBytes []byte) (kyber.Point, error) {
	if len(publicKeyBytes) != PublicKeySize {
		return nil, errors.Errorf("invalid public key size. Want: %d, got: %d",
			PublicKeySize, len(publicKeyBytes))
	}
	point := pairing.G1().Point()
	err := point.UnmarshalBinary(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling G1 public key")
	}
	return point, nil
}

// signatureFromBytes unmarshals a compressed G2 signature
func signatureFromBytes(signatureBytes []byte) (kyber.Point, error) {
	if len(signatureBytes) != SignatureSize {
		return nil, errors.Errorf("invalid signature size. Want: %d, got: %d",
			SignatureSize, len(signatureBytes))
	}
	point := pairing.G2().Point()
	err := point.UnmarshalBinary(signatureBytes)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling G2 signature")
	}
	return point, nil
}

// hashablePoint matches the hash-to-curve method of the suite's G2 points
type hashablePoint interface {
	Hash(message []byte) kyber.Point
}

// hashToG2 maps the augmented message onto the signature group
func hashToG2(publicKeyBytes, message []byte) kyber.Point {
	augmented := make([]byte, 0, len(publicKeyBytes)+len(message))
	augmented = append(augmented, publicKeyBytes...)
	augmented = append(augmented, message...)
	return pairing.G2().Point().(hashablePoint).Hash(augmented)
}

// AggregateVerify verifies that signature is the aggregate of one signature
// per (public key, message) pair. An empty pair set verifies only against
// the identity signature.
func AggregateVerify(pairs []*PublicKeyMessagePair, signature []byte, cache *SignatureCache) (bool, error) {
	signaturePoint, err := signatureFromBytes(signature)
	if err != nil {
		return false, err
	}

	if len(pairs) == 0 {
		return signaturePoint.Equal(pairing.G2().Point().Null()), nil
	}

	// e(g1, sig) must equal the product of e(pk_i, H(pk_i ‖ msg_i)).
	// GT's Null is not the identity of its Add, so the product is seeded
	// from the first element rather than folded over it.
	left := pairing.Pair(pairing.G1().Point().Base(), signaturePoint)
	var right kyber.Point
	for _, pair := range pairs {
		gtElement, err := pairedElement(pair, cache)
		if err != nil {
			return false, err
		}
		if right == nil {
			right = gtElement.Clone()
			continue
		}
		right = right.Add(right, gtElement)
	}
	return left.Equal(right), nil
}

// pairedElement computes e(pk, H(pk ‖ msg)), consulting the pairing cache
// when one is provided
func pairedElement(pair *PublicKeyMessagePair, cache *SignatureCache) (kyber.Point, error) {
	if cache != nil {
		if cached, ok := cache.get(pair); ok {
			return cached, nil
		}
	}

	publicKeyPoint, err := PublicKeyFromBytes(pair.PublicKey)
	if err != nil {
		return nil, err
	}
	gtElement := pairing.Pair(publicKeyPoint, hashToG2(pair.PublicKey, pair.Message))

	if cache != nil {
		cache.add(pair, gtElement)
	}
	return gtElement, nil
}

// AggregateSignatures adds up individual G2 signatures into one aggregate
func AggregateSignatures(signatures ...[]byte) ([]byte, error) {
	aggregate := pairing.G2().Point().Null()
	for _, signatureBytes := range signatures {
		point, err := signatureFromBytes(signatureBytes)
		if err != nil {
			return nil, err
		}
		aggregate = aggregate.Add(aggregate, point)
	}
	return aggregate.MarshalBinary()
}

// IdentitySignature returns the aggregate of zero signatures
func IdentitySignature() []byte {
	identity, err := pairing.G2().Point().Null().MarshalBinary()
	if err != nil {
		// Marshalling the identity point cannot fail.
		panic(err)
	}
	return identity
}

// GenerateKeyPair picks a fresh private scalar and its G1 public key.
// Validation never signs; this exists for tooling and tests.
func GenerateKeyPair() (kyber.Scalar, []byte, error) {
	privateKey := pairing.G1().Scalar().Pick(random.New())
	publicKeyBytes, err := pairing.G1().Point().Mul(privateKey, nil).MarshalBinary()
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshalling G1 public key")
	}
	return privateKey, publicKeyBytes, nil
}

// Sign signs message with the augmented scheme
func Sign(privateKey kyber.Scalar, publicKeyBytes, message []byte) ([]byte, error) {
	hashedMessage := hashToG2(publicKeyBytes, message)
	signature := pairing.G2().Point().Mul(privateKey, hashedMessage)
	return signature.MarshalBinary()
}
