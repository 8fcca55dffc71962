package table

// RecordId is the logical id of one record: the owning page's position
// in the table's page list in the high half, the slot in the low half.
type RecordId uint64

func NewRecordId(pageIndex uint32, slot uint8) RecordId {
	return RecordId(uint64(pageIndex)<<32 | uint64(slot))
}

func (r RecordId) PageIndex() uint32 {
	return uint32(r >> 32)
}

func (r RecordId) Slot() uint8 {
	return uint8(r)
}
