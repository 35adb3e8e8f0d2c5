package slave

// NVReader reads one NV cell at address, returning the cell-width bits in
// the low bits of value (upper bits zero) and ok=false on failure, §6.
type NVReader func(address uint16) (value uint32, ok bool)

// NVWriter writes the low cell-width bits of value at address, §6.
type NVWriter func(address uint16, value uint32) (ok bool)
