package seq

import (
	"errors"
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/stimulus"
)

var _ = Describe("Sequencer", func() {
	var (
		mockCtrl *gomock.Controller
		ctrl     *MockController
		bkdr     *MockBackdoor
		cfg      stimulus.DistributionConfig
		rng      *rand.Rand
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		ctrl = NewMockController(mockCtrl)
		bkdr = NewMockBackdoor(mockCtrl)
		cfg = stimulus.DefaultDistributionConfig()
		cfg.MaxConfigs = 3
		cfg.MaxOpsPerConfig = 10
		rng = rand.New(rand.NewSource(1))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	build := func() *Sequencer {
		return MakeBuilder().
			WithConfig(cfg).
			WithRand(rng).
			WithController(ctrl).
			WithBackdoor(bkdr).
			Build("Seq")
	}

	allowAll := func(events *[]string) {
		bkdr.EXPECT().Init(gomock.Any(), gomock.Any()).
			DoAndReturn(func(flash.Partition, InitMode) error {
				*events = append(*events, "init")
				return nil
			}).Times(2)
		ctrl.EXPECT().ApplyRegionConfig(gomock.Any(), gomock.Any()).
			DoAndReturn(func(int, flash.MPRegion) error {
				*events = append(*events, "region")
				return nil
			}).AnyTimes()
		ctrl.EXPECT().ApplyDefaultRegionConfig(gomock.Any()).
			DoAndReturn(func(flash.DefaultRegionPolicy) error {
				*events = append(*events, "defaults")
				return nil
			}).AnyTimes()
		ctrl.EXPECT().ApplyBankEraseConfig(gomock.Any()).
			DoAndReturn(func(flash.BankErasePolicy) error {
				*events = append(*events, "banks")
				return nil
			}).AnyTimes()
		bkdr.EXPECT().Write(gomock.Any(), gomock.Any()).
			DoAndReturn(func(flash.Operation, flash.Payload) error {
				*events = append(*events, "prep")
				return nil
			}).AnyTimes()
		ctrl.EXPECT().StartOperation(gomock.Any(), gomock.Any()).
			DoAndReturn(func(flash.Operation, flash.Payload) error {
				*events = append(*events, "start")
				return nil
			}).AnyTimes()
		ctrl.EXPECT().WaitDone().
			DoAndReturn(func() error {
				*events = append(*events, "wait")
				return nil
			}).AnyTimes()
		bkdr.EXPECT().ReadCheck(gomock.Any(), gomock.Any()).
			DoAndReturn(func(flash.Operation, flash.Payload) error {
				*events = append(*events, "check")
				return nil
			}).AnyTimes()
		bkdr.EXPECT().EraseCheck(gomock.Any()).
			DoAndReturn(func(flash.Operation) error {
				*events = append(*events, "check")
				return nil
			}).AnyTimes()
	}

	It("should run to completion in strict per-iteration order", func() {
		var events []string
		allowAll(&events)
		s := build()

		Expect(s.Run()).To(Succeed())
		Expect(s.State()).To(Equal(StateDone))

		Expect(events[0]).To(Equal("init"))
		Expect(events[1]).To(Equal("init"))

		// Walk the trace: every start is preceded by a completed config
		// and followed by wait then check; no new config before the
		// check of the previous op.
		pendingOp := false
		configured := false
		for _, e := range events[2:] {
			switch e {
			case "region", "defaults", "banks":
				Expect(pendingOp).To(BeFalse())
				if e == "banks" {
					configured = true
				}
			case "prep", "start":
				Expect(configured).To(BeTrue())
				if e == "start" {
					pendingOp = true
				}
			case "wait":
				Expect(pendingOp).To(BeTrue())
			case "check":
				pendingOp = false
			}
		}
		Expect(pendingOp).To(BeFalse())
	})

	It("should respect the iteration bounds", func() {
		var events []string
		allowAll(&events)
		cfg.MaxConfigs = 2
		cfg.MaxOpsPerConfig = 3
		s := build()

		Expect(s.Run()).To(Succeed())

		Expect(s.ConfigsApplied).To(BeNumerically(">=", 1))
		Expect(s.ConfigsApplied).To(BeNumerically("<=", 2))
		Expect(s.OpsChecked).To(BeNumerically(">=", 1))
		Expect(s.OpsChecked).
			To(BeNumerically("<=", s.ConfigsApplied*3))
	})

	It("should apply one region config per enabled slot", func() {
		var events []string
		allowAll(&events)
		cfg.MaxConfigs = 1
		cfg.MaxOpsPerConfig = 1
		cfg.NumEnabledRegions = 4
		s := build()

		Expect(s.Run()).To(Succeed())

		regionApplies := 0
		for _, e := range events {
			if e == "region" {
				regionApplies++
			}
		}
		Expect(regionApplies).To(Equal(4))
	})

	It("should prepare read targets with reference data before the op",
		func() {
			var events []string
			allowAll(&events)
			cfg.MaxConfigs = 1
			s := MakeBuilder().
				WithConfig(cfg).
				WithRand(rng).
				WithController(ctrl).
				WithBackdoor(bkdr).
				WithOpKindWeights([]stimulus.Choice{
					{Value: int(flash.OpRead), Weight: 1},
				}).
				Build("Seq")

			Expect(s.Run()).To(Succeed())

			for i, e := range events {
				if e == "start" {
					Expect(events[i-1]).To(Equal("prep"))
				}
			}
		})

	It("should not touch reference memory before an erase", func() {
		var events []string
		allowAll(&events)
		cfg.MaxConfigs = 1
		s := MakeBuilder().
			WithConfig(cfg).
			WithRand(rng).
			WithController(ctrl).
			WithBackdoor(bkdr).
			WithOpKindWeights([]stimulus.Choice{
				{Value: int(flash.OpErase), Weight: 1},
			}).
			Build("Seq")

		Expect(s.Run()).To(Succeed())

		for _, e := range events {
			Expect(e).ToNot(Equal("prep"))
		}
	})

	It("should abort on a check mismatch without retrying", func() {
		bkdr.EXPECT().Init(gomock.Any(), gomock.Any()).
			Return(nil).Times(2)
		ctrl.EXPECT().ApplyRegionConfig(gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		ctrl.EXPECT().ApplyDefaultRegionConfig(gomock.Any()).
			Return(nil).AnyTimes()
		ctrl.EXPECT().ApplyBankEraseConfig(gomock.Any()).
			Return(nil).AnyTimes()
		bkdr.EXPECT().Write(gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		ctrl.EXPECT().StartOperation(gomock.Any(), gomock.Any()).
			Return(nil).Times(1)
		ctrl.EXPECT().WaitDone().Return(nil).Times(1)
		bkdr.EXPECT().ReadCheck(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("word 0 differs")).Times(1)

		s := MakeBuilder().
			WithConfig(cfg).
			WithRand(rng).
			WithController(ctrl).
			WithBackdoor(bkdr).
			WithOpKindWeights([]stimulus.Choice{
				{Value: int(flash.OpProgram), Weight: 1},
			}).
			Build("Seq")

		err := s.Run()

		var mismatch *CheckMismatchError
		Expect(errors.As(err, &mismatch)).To(BeTrue())
		Expect(mismatch.Op.Kind).To(Equal(flash.OpProgram))
		Expect(s.State()).To(Equal(StateChecking))
	})

	It("should propagate an operation timeout", func() {
		bkdr.EXPECT().Init(gomock.Any(), gomock.Any()).
			Return(nil).Times(2)
		ctrl.EXPECT().ApplyRegionConfig(gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		ctrl.EXPECT().ApplyDefaultRegionConfig(gomock.Any()).
			Return(nil).AnyTimes()
		ctrl.EXPECT().ApplyBankEraseConfig(gomock.Any()).
			Return(nil).AnyTimes()
		bkdr.EXPECT().Write(gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		ctrl.EXPECT().StartOperation(gomock.Any(), gomock.Any()).
			Return(nil).Times(1)
		ctrl.EXPECT().WaitDone().Return(ErrOperationTimeout).Times(1)

		s := build()

		Expect(errors.Is(s.Run(), ErrOperationTimeout)).To(BeTrue())
	})

	It("should abort when a region set cannot be generated", func() {
		bkdr.EXPECT().Init(gomock.Any(), gomock.Any()).
			Return(nil).Times(2)
		cfg.NumEnabledRegions = flash.DefaultSpec().NumRegionSlots + 1
		s := build()

		Expect(errors.Is(s.Run(), stimulus.ErrConstraintUnsatisfiable)).
			To(BeTrue())
	})

	It("should abort when applying a region config fails", func() {
		bkdr.EXPECT().Init(gomock.Any(), gomock.Any()).
			Return(nil).Times(2)
		ctrl.EXPECT().ApplyRegionConfig(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("bus error")).Times(1)
		s := build()

		Expect(s.Run()).ToNot(Succeed())
	})

	It("should feed the recorder and the progress reporter", func() {
		var events []string
		allowAll(&events)
		recorder := NewMockRecorder(mockCtrl)
		progress := NewMockProgress(mockCtrl)
		recorder.EXPECT().
			RecordRegion(gomock.Any(), gomock.Any(), gomock.Any()).
			MinTimes(1)
		recorder.EXPECT().
			RecordOp(gomock.Any(), gomock.Any(), gomock.Any()).
			MinTimes(1)
		progress.EXPECT().IncrementFinished(uint64(1)).MinTimes(1)

		s := MakeBuilder().
			WithConfig(cfg).
			WithRand(rng).
			WithController(ctrl).
			WithBackdoor(bkdr).
			WithRecorder(recorder).
			WithProgress(progress).
			Build("Seq")

		Expect(s.Run()).To(Succeed())
	})

	It("should refuse to build without collaborators", func() {
		Expect(func() {
			MakeBuilder().WithRand(rng).Build("Seq")
		}).To(Panic())
	})
})
