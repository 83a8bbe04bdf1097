package cli

import (
	"github.com/deppfellow/client-directory/internal/model"
	"github.com/spf13/cobra"
)

const (
	flagFirstName   = "first-name"
	flagLastName    = "last-name"
	flagEmail       = "email"
	flagPhoneNumber = "phone-number"
)

// optionalString returns the flag value, or nil when the flag was not
// passed or is blank.
func optionalString(cmd *cobra.Command, name string) *string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	value := flag.Value.String()
	return model.NullIfEmpty(&value)
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagFirstName, "", "first name (up to 40 characters)")
	cmd.Flags().String(flagLastName, "", "last name (up to 60 characters)")
	cmd.Flags().String(flagEmail, "", "email address (up to 100 characters)")
}

func addFilterFlags(cmd *cobra.Command) {
	addClientFlags(cmd)
	cmd.Flags().String(flagPhoneNumber, "", "phone number (up to 12 characters)")
}

func filterFromFlags(cmd *cobra.Command) model.ClientFilter {
	return model.ClientFilter{
		FirstName:   optionalString(cmd, flagFirstName),
		LastName:    optionalString(cmd, flagLastName),
		Email:       optionalString(cmd, flagEmail),
		PhoneNumber: optionalString(cmd, flagPhoneNumber),
	}
}
