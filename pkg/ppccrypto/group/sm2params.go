package group

import (
	"crypto/elliptic"
	"math/big"
	"sync"
)

// SM2 has no curve implementation anywhere in the retrieved corpus, so its
// domain parameters are hand-entered from GB/T 32918.5-2017 Annex A
// (recommended 256-bit curve) and laid over the stdlib's generic
// elliptic.CurveParams, the same short-Weierstrass machinery P-256 uses.

var (
	sm2Once  sync.Once
	sm2Inst  *elliptic.CurveParams
)

func sm2Curve() elliptic.Curve {
	sm2Once.Do(func() {
		p, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
		b, _ := new(big.Int).SetString("28E9FA9E9D9F5E344D5A9E4BCF6509A7F39789F515AB8F92DDBCBD414D940E93", 16)
		n, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123", 16)
		gx, _ := new(big.Int).SetString("32C4AE2C1F1981195F9904466A39C9948FE30BBFF2660BE1715A4589334C74C7", 16)
		gy, _ := new(big.Int).SetString("BC3736A2F4F6779C59BDCEE36B692153D0A9877CC62A474002DF32E52139F0A0", 16)

		sm2Inst = &elliptic.CurveParams{
			P:       p,
			N:       n,
			B:       b,
			Gx:      gx,
			Gy:      gy,
			BitSize: 256,
			Name:    "sm2p256v1",
		}
	})
	return sm2Inst
}
