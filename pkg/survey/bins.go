package survey

// Log-scale histogram bucketing. The wide scheme groups magnitudes by
// powers of 16 and suits byte sizes whose dynamic range runs from single
// bytes to gigabytes. The narrow scheme groups by powers of 4 for finer
// resolution at the low end and suits entry counts.

const (
	hbinLen   = 16
	hbinShift = 4
	hbinMask  = 0xF

	qbinLen   = 32
	qbinShift = 2
	qbinMask  = 0x3
)

// hbin maps a magnitude to its base-16 bucket. Zero maps to bucket 0 and
// anything past the last bucket's range collapses into the last bucket.
func hbin(v uint64) int {
	upper := uint64(hbinMask)
	for k := 0; k < hbinLen; k++ {
		if v <= upper {
			return k
		}
		next := (upper << hbinShift) | hbinMask
		if next <= upper {
			break
		}
		upper = next
	}
	return hbinLen - 1
}

// qbin is the base-4 variant of hbin.
func qbin(v uint64) int {
	upper := uint64(qbinMask)
	for k := 0; k < qbinLen; k++ {
		if v <= upper {
			return k
		}
		next := (upper << qbinShift) | qbinMask
		if next <= upper {
			break
		}
		upper = next
	}
	return qbinLen - 1
}

// hbinRange reports the inclusive magnitude range of bucket k, replaying the
// same shift/mask arithmetic hbin assigns with.
func hbinRange(k int) (lower, upper uint64) {
	upper = hbinMask
	for i := 0; i < k; i++ {
		lower = upper + 1
		upper = (upper << hbinShift) | hbinMask
	}
	return lower, upper
}

// qbinRange is the base-4 variant of hbinRange.
func qbinRange(k int) (lower, upper uint64) {
	upper = qbinMask
	for i := 0; i < k; i++ {
		lower = upper + 1
		upper = (upper << qbinShift) | qbinMask
	}
	return lower, upper
}

// HistBin aggregates all items whose bucketed magnitude fell in its range.
type HistBin struct {
	Count       uint32
	SumSize     uint64
	SumDiskSize uint64
}

func (b *HistBin) add(size, diskSize uint64) {
	b.Count++
	b.SumSize += size
	b.SumDiskSize += diskSize
}
