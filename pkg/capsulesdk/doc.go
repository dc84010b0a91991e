// Package capsulesdk is a Go client for the time capsule service.
//
// Register and log in with a Client, then use the returned Session to list
// and create capsules:
//
//	c := capsulesdk.NewClient("http://localhost:5000")
//	if err := c.Register(ctx, capsulesdk.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "pw"}); err != nil {
//		return err
//	}
//	sess, err := c.Login(ctx, "alice", "pw")
//	if err != nil {
//		return err
//	}
//	capsule, err := sess.CreateCapsule(ctx, capsulesdk.CreateCapsuleRequest{Title: "2035", Content: "hello"})
//
// Non-2xx responses are returned as *APIError.
package capsulesdk
