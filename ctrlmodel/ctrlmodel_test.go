package ctrlmodel_test

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flashdv/backdoor"
	"github.com/sarchlab/flashdv/ctrlmodel"
	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/seq"
)

var _ = Describe("Comp", func() {
	var (
		spec flash.Spec
		mem  *backdoor.Mem
		ctrl *ctrlmodel.Comp
	)

	BeforeEach(func() {
		spec = flash.DefaultSpec()
		mem = backdoor.New(spec, rand.New(rand.NewSource(1)))
		ctrl = ctrlmodel.MakeBuilder().
			WithSpec(spec).
			WithMem(mem).
			Build("Ctrl")
	})

	It("should store applied configuration", func() {
		region := flash.MPRegion{
			Enabled: true, ReadEn: true, StartPage: 4, NumPages: 2,
		}
		Expect(ctrl.ApplyRegionConfig(3, region)).To(Succeed())

		stored, ok := ctrl.Region(3)
		Expect(ok).To(BeTrue())
		Expect(stored).To(Equal(region))

		defaults := flash.DefaultRegionPolicy{ReadEn: true, EraseEn: true}
		Expect(ctrl.ApplyDefaultRegionConfig(defaults)).To(Succeed())
		Expect(ctrl.Defaults()).To(Equal(defaults))

		banks := flash.BankErasePolicy{EraseEn: []bool{true, false}}
		Expect(ctrl.ApplyBankEraseConfig(banks)).To(Succeed())
		Expect(ctrl.BankErase()).To(Equal(banks))
	})

	It("should reject invalid configuration", func() {
		_, ok := ctrl.Region(0)
		Expect(ok).To(BeFalse())

		err := ctrl.ApplyRegionConfig(spec.NumRegionSlots, flash.MPRegion{})
		Expect(err).To(HaveOccurred())

		err = ctrl.ApplyBankEraseConfig(
			flash.BankErasePolicy{EraseEn: []bool{true}})
		Expect(err).To(HaveOccurred())
	})

	It("should program from a blank baseline and read it back", func() {
		op := flash.Operation{
			ID:        "op1",
			Kind:      flash.OpProgram,
			Partition: flash.PartitionData,
			Address:   0x400,
			NumWords:  4,
		}
		payload := flash.Payload{1, 2, 3, 4}

		Expect(ctrl.StartOperation(op, payload)).To(Succeed())
		Expect(ctrl.WaitDone()).To(Succeed())

		readOp := op
		readOp.Kind = flash.OpRead
		buffer := make(flash.Payload, 4)
		Expect(ctrl.StartOperation(readOp, buffer)).To(Succeed())
		Expect(ctrl.WaitDone()).To(Succeed())

		Expect(buffer).To(Equal(payload))
		Expect(mem.ReadCheck(op, payload)).To(Succeed())
	})

	It("should leave memory intact on read", func() {
		op := flash.Operation{
			ID:        "op2",
			Kind:      flash.OpRead,
			Partition: flash.PartitionData,
			Address:   0x100,
			NumWords:  2,
		}
		ref := flash.Payload{0xAAAA5555, 0x5555AAAA}
		Expect(mem.Write(op, ref)).To(Succeed())

		buffer := make(flash.Payload, 2)
		Expect(ctrl.StartOperation(op, buffer)).To(Succeed())
		Expect(ctrl.WaitDone()).To(Succeed())

		Expect(buffer).To(Equal(ref))
		Expect(mem.ReadCheck(op, ref)).To(Succeed())
	})

	It("should erase a page", func() {
		Expect(mem.ProgramWords(
			flash.PartitionData, spec.PageStart(7),
			flash.Payload{0, 0})).To(Succeed())

		op := flash.Operation{
			ID:          "op3",
			Kind:        flash.OpErase,
			Partition:   flash.PartitionData,
			Granularity: flash.ErasePage,
			Address:     spec.PageStart(7) + 12,
		}
		Expect(ctrl.StartOperation(op, nil)).To(Succeed())
		Expect(ctrl.WaitDone()).To(Succeed())

		Expect(mem.EraseCheck(op)).To(Succeed())
	})

	It("should refuse overlapping operations and configs", func() {
		ctrl = ctrlmodel.MakeBuilder().
			WithSpec(spec).
			WithMem(mem).
			WithLatency(50 * time.Millisecond).
			Build("SlowCtrl")

		op := flash.Operation{
			Kind: flash.OpRead, Partition: flash.PartitionData, NumWords: 1,
		}
		Expect(ctrl.StartOperation(op, make(flash.Payload, 1))).To(Succeed())

		Expect(ctrl.StartOperation(op, make(flash.Payload, 1))).
			ToNot(Succeed())
		Expect(ctrl.ApplyDefaultRegionConfig(flash.DefaultRegionPolicy{})).
			ToNot(Succeed())

		Expect(ctrl.WaitDone()).To(Succeed())
	})

	It("should time out when the operation never completes", func() {
		ctrl = ctrlmodel.MakeBuilder().
			WithSpec(spec).
			WithMem(mem).
			WithLatency(time.Second).
			WithTimeout(10 * time.Millisecond).
			Build("StuckCtrl")

		op := flash.Operation{
			Kind: flash.OpRead, Partition: flash.PartitionData, NumWords: 1,
		}
		Expect(ctrl.StartOperation(op, make(flash.Payload, 1))).To(Succeed())

		Expect(ctrl.WaitDone()).To(MatchError(seq.ErrOperationTimeout))
	})

	It("should report waiting with nothing outstanding", func() {
		Expect(ctrl.WaitDone()).ToNot(Succeed())
	})
})
