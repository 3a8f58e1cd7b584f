package httpadapter

import (
	"github.com/kbukum/restadapter/provider"
)

// compile-time assertions
var _ provider.RequestResponse[*Request, *Response] = (*Adapter)(nil)
var _ provider.Closeable = (*Adapter)(nil)
