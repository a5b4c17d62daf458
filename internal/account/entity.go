// AngelaMos | 2026
// entity.go

package account

import (
	"github.com/driveready/driveready-api/internal/account/model"
)

// Account is the credential-bearing record for a platform user. The
// definition lives in the leaf package internal/account/model so the
// authentication middleware can reference it without importing this
// package; the alias keeps account.Account as the canonical name.
type Account = model.Account
