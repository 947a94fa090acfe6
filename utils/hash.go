package utils

// BoneNameHash is a case-insensitive rolling hash of an ASCII bone name,
// used to speed up name to track lookups.
func BoneNameHash(str string) uint32 {
	hash := uint32(0)
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		hash = (hash << 7) - hash + uint32(c)
	}
	return hash
}
