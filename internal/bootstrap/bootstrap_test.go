package bootstrap_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zaptest"

	"github.com/lyfeloopinc/interop-relayer/internal/bootstrap"
	"github.com/lyfeloopinc/interop-relayer/internal/config"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
	"github.com/lyfeloopinc/interop-relayer/internal/vmstest"
)

var _ = Describe("Reconciler", func() {
	var (
		ctx          context.Context
		chainA       *config.ChainConfig
		chainB       *config.ChainConfig
		handleA      *vmstest.Fake
		handleB      *vmstest.Fake
		trustWrites  int
		preferredSet map[uint64]common.Address
		trusted      map[uint64]common.Address
		bridgeRatios map[uint64]bridgeRatio
		bridgeAdded  int
	)

	BeforeEach(func() {
		ctx = context.Background()
		chainA = &config.ChainConfig{Name: "chain-A", ChainID: 1, InteropCenter: common.HexToAddress("0xA0"), BaseTokenPriceUSD: big.NewInt(100)}
		chainB = &config.ChainConfig{Name: "chain-B", ChainID: 2, InteropCenter: common.HexToAddress("0xB0"), BaseTokenPriceUSD: big.NewInt(200)}

		trustWrites = 0
		bridgeAdded = 0
		preferredSet = map[uint64]common.Address{}
		trusted = map[uint64]common.Address{}
		bridgeRatios = map[uint64]bridgeRatio{}

		makeHandle := func(self *config.ChainConfig) *vmstest.Fake {
			h := &vmstest.Fake{}
			h.ChainIDFunc = func() uint64 { return self.ChainID }
			h.TrustedSourceFunc = func(ctx context.Context, sourceChainID uint64) (common.Address, error) {
				return trusted[sourceChainID*1000+self.ChainID], nil
			}
			h.AddTrustedSourceFunc = func(ctx context.Context, sourceChainID uint64, interopCenter common.Address) error {
				trusted[sourceChainID*1000+self.ChainID] = interopCenter
				trustWrites++
				return nil
			}
			h.PreferredPaymasterFunc = func(ctx context.Context) (common.Address, error) {
				return common.HexToAddress("0xFEE"), nil
			}
			h.PreferredPaymasterOfFunc = func(ctx context.Context, sourceChainID uint64) (common.Address, error) {
				return preferredSet[sourceChainID*1000+self.ChainID], nil
			}
			h.SetPreferredPaymasterFunc = func(ctx context.Context, sourceChainID uint64, paymaster common.Address) error {
				preferredSet[sourceChainID*1000+self.ChainID] = paymaster
				return nil
			}
			h.PaymasterBaseTokenFunc = func(ctx context.Context, paymaster common.Address) (common.Address, error) {
				// Distinct per chain so a test that mixes up source's and
				// destination's base token fails instead of passing by
				// coincidence.
				return common.BigToAddress(big.NewInt(0xBA5E000 + int64(self.ChainID))), nil
			}
			h.BridgeStateFunc = func(ctx context.Context, token common.Address, sourceChainID uint64) (common.Address, *big.Int, *big.Int, error) {
				ratio, ok := bridgeRatios[sourceChainID*1000+self.ChainID]
				if !ok {
					return common.Address{}, nil, nil, nil
				}
				return ratio.Token, ratio.Nominator, ratio.Denominator, nil
			}
			h.AddOtherBridgeFunc = func(ctx context.Context, sourceChainID uint64, remoteToken common.Address, nominator, denominator *big.Int) error {
				bridgeRatios[sourceChainID*1000+self.ChainID] = bridgeRatio{Token: remoteToken, Nominator: nominator, Denominator: denominator}
				bridgeAdded++
				return nil
			}
			return h
		}
		handleA = makeHandle(chainA)
		handleB = makeHandle(chainB)
	})

	reconcilerFor := func() *bootstrap.Reconciler {
		return bootstrap.New(
			[]*config.ChainConfig{chainA, chainB},
			map[uint64]vms.Handle{chainA.ChainID: handleA, chainB.ChainID: handleB},
			zaptest.NewLogger(GinkgoT()),
			nil,
		)
	}

	It("writes trusted source, preferred paymaster, and bridge ratio for every ordered chain pair", func() {
		Expect(reconcilerFor().Reconcile(ctx)).To(Succeed())

		// 2 chains x 2 chains = 4 ordered pairs (including self-pairs).
		Expect(trustWrites).To(Equal(4))
		Expect(bridgeAdded).To(Equal(4))
	})

	It("records the source chain's own base token as the bridge's remote token, not the destination's", func() {
		Expect(reconcilerFor().Reconcile(ctx)).To(Succeed())

		sourceBaseToken, err := handleA.PaymasterBaseToken(ctx, common.Address{})
		Expect(err).NotTo(HaveOccurred())

		ratio, ok := bridgeRatios[chainA.ChainID*1000+chainB.ChainID]
		Expect(ok).To(BeTrue())
		Expect(ratio.Token).To(Equal(sourceBaseToken), "destination's bridge config for source must record source's base token")
	})

	It("is idempotent: a second run performs no further writes", func() {
		reconciler := reconcilerFor()
		Expect(reconciler.Reconcile(ctx)).To(Succeed())

		firstTrustWrites := trustWrites
		firstBridgeWrites := bridgeAdded

		Expect(reconciler.Reconcile(ctx)).To(Succeed())

		Expect(trustWrites).To(Equal(firstTrustWrites), "second run must not re-add already-trusted sources")
		Expect(bridgeAdded).To(Equal(firstBridgeWrites), "second run must not re-add an already-correct bridge ratio")
	})

	It("does not abort remaining pairs when one pair's reconciliation fails", func() {
		handleA.TrustedSourceFunc = func(ctx context.Context, sourceChainID uint64) (common.Address, error) {
			return common.Address{}, assertErr
		}
		Expect(reconcilerFor().Reconcile(ctx)).To(Succeed())

		// Pairs with chain-B as destination should still have been reconciled
		// despite chain-A failing every trusted-source read.
		Expect(trustWrites).To(BeNumerically(">", 0))
	})
})

var assertErr = &testError{"simulated rpc failure"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

type bridgeRatio struct {
	Token                 common.Address
	Nominator, Denominator *big.Int
}
