/*
Package ncerr defines the network controller channel error taxonomy.

Every error raised by the channel is an *Error carrying a Type
(configuration, protocol, transport or logic) and a Tag naming the
specific condition. Errors compare equal under errors.Is when their
Type and Tag match, so callers can test against the exported
sentinels without caring about message text:

	if errors.Is(err, ncerr.ErrInvalidParameter) {
		...
	}
*/
package ncerr
