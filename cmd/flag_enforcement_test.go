package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

func TestEmailRequiresFrom(t *testing.T) {
	viper.Set("from", "")

	err := emailCmd.PreRunE(emailCmd, []string{"test@example.com", "city-peaks"})
	if err == nil {
		t.Error("Expected error when from is missing, got nil")
	} else if err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected 'required flag(s) \"from\" not set', got %v", err)
	}

	viper.Set("from", "reports@example.com")
	t.Cleanup(func() { viper.Set("from", "") })
	err = emailCmd.PreRunE(emailCmd, []string{"test@example.com", "city-peaks"})
	if err != nil {
		t.Errorf("Expected nil when from is set, got %v", err)
	}
}
