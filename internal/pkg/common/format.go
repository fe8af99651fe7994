package common

// ShortAddress abbreviates a 0x-prefixed address for display.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}

	return address[:6] + "..." + address[len(address)-4:]
}

// ShortID abbreviates an object id for display.
func ShortID(id string) string {
	if len(id) <= 12 {
		return id
	}

	return id[:8] + "..." + id[len(id)-4:]
}
