package utils

import "testing"

var hashTests = []struct {
	a, b  string
	equal bool
}{
	{"", "", true},
	{"Bip01", "bip01", true},
	{"BIP01 Spine", "bip01 spine", true},
	{"Bip01 L Hand", "Bip01 R Hand", false},
	{"root", "root_", false},
}

func TestBoneNameHash(t *testing.T) {
	for _, test := range hashTests {
		result := BoneNameHash(test.a) == BoneNameHash(test.b)
		if result != test.equal {
			t.Errorf("BoneNameHash(%q)==BoneNameHash(%q) is %v; expected %v", test.a, test.b, result, test.equal)
		}
	}
	if BoneNameHash("@") != 0x40 {
		t.Errorf("BoneNameHash(\"@\")=0x%x; expected 0x40", BoneNameHash("@"))
	}
}
