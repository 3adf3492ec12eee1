package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// Key collision attacks could let a caller move charges between buckets by
// crafting identifiers that contain the delimiter.
type KeySecuritySuite struct {
	suite.Suite
}

func TestKeySecuritySuite(t *testing.T) {
	suite.Run(t, new(KeySecuritySuite))
}

func (s *KeySecuritySuite) TestKeyCollisionAttack() {
	s.Run("colon in identifier is escaped", func() {
		key := NewAccountKey("acct:admin", DescriptorSetBackupID)

		s.Equal("account:acct_cadmin:set_backup_id", key.String())
		s.NotContains(key.String(), "acct:admin")
	})

	s.Run("multiple colons are all escaped", func() {
		key := NewRateLimitKey(KeyPrefixIP, "ip:192:168:1:1", DescriptorRedeemReceipt)

		s.Contains(key.String(), "ip_c192_c168_c1_c1")
	})

	s.Run("escaped underscore cannot be confused with an escaped colon", func() {
		colon := NewAccountKey("a:b", DescriptorSetBackupID)
		underscore := NewAccountKey("a_cb", DescriptorSetBackupID)

		s.NotEqual(colon.String(), underscore.String())
	})

	s.Run("legitimate keys are unaffected", func() {
		key := NewAccountKey("7d1f3c4e-2a41-4f0e-9c55-1b2f1a0c9e77", DescriptorRedeemReceipt)

		s.Equal("account:7d1f3c4e-2a41-4f0e-9c55-1b2f1a0c9e77:redeem_receipt", key.String())
	})

	s.Run("empty identifier is preserved", func() {
		key := NewAccountKey("", DescriptorSetBackupID)

		s.Equal("account::set_backup_id", key.String())
	})

	s.Run("descriptors never share a bucket", func() {
		a := NewAccountKey("acct", DescriptorSetBackupID)
		b := NewAccountKey("acct", DescriptorRedeemReceipt)

		s.NotEqual(a.String(), b.String())
	})
}

func (s *KeySecuritySuite) TestParseDescriptor() {
	d, err := ParseDescriptor("redeem_receipt")
	s.Require().NoError(err)
	s.Equal(DescriptorRedeemReceipt, d)

	_, err = ParseDescriptor("")
	s.Error(err)

	_, err = ParseDescriptor("login")
	s.Error(err)
}
