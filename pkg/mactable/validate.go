package mactable

import (
	"fmt"
	"time"

	"github.com/iamBelugaa/mactable/internal/engine"
	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/options"
)

func validateSlot(slot, capacity int) error {
	if slot < 0 || slot >= capacity {
		return errors.NewFieldRangeError("slot", slot, 0, capacity-1).
			WithCode(errors.ErrTableSlotRange).
			WithMessage(fmt.Sprintf("Slot %d is outside of table with %d slots", slot, capacity))
	}
	return nil
}

func validateInsert(req *engine.InsertRequest) error {
	if req.HasTTL && (req.TTL <= 0 || req.TTL > options.MaxTTL) {
		return errors.NewFieldRangeError("ttl", req.TTL, time.Nanosecond, options.MaxTTL)
	}
	return nil
}
