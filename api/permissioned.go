package api

import (
	"context"
	"fmt"
	"reflect"

	"github.com/filecoin-project/go-jsonrpc/auth"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

type MethodName = string

var AllPermissions = []auth.Permission{"read", "write", "sign", "admin"}
var defaultPerms = []auth.Permission{"read"}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// PermissionProxy fills the Internal structs of out with the methods of in.
// Each call checks the perm tag of the field and turns taxonomy errors into
// types.RPCError so the kind survives the rpc boundary.
func PermissionProxy(in interface{}, out interface{}) {
	ra := reflect.ValueOf(in)
	for _, internal := range GetInternalStructs(out) {
		rint := reflect.ValueOf(internal).Elem()
		for i := 0; i < rint.NumField(); i++ {
			field := rint.Type().Field(i)
			methodName := field.Name

			fn := ra.MethodByName(methodName)
			if !fn.IsValid() {
				panic("missing method " + methodName) // ok
			}
			requiredPerm := auth.Permission(field.Tag.Get("perm"))
			if requiredPerm == "" {
				panic("missing 'perm' tag on " + field.Name) // ok
			}

			rint.Field(i).Set(reflect.MakeFunc(field.Type, func(args []reflect.Value) (results []reflect.Value) {
				ctx := args[0].Interface().(context.Context)
				if !auth.HasPerm(ctx, defaultPerms, requiredPerm) {
					err := fmt.Errorf("missing permission to invoke '%s' (need '%s')", methodName, requiredPerm)
					return abort(fn.Type(), err)
				}

				results = fn.Call(args)
				last := results[len(results)-1]
				if last.Type() == errorType && !last.IsNil() {
					wrapped := types.WrapRPCError(last.Interface().(error))
					results[len(results)-1] = reflect.ValueOf(&wrapped).Elem()
				}
				return results
			}))
		}
	}
}

func abort(fnType reflect.Type, err error) []reflect.Value {
	rerr := reflect.ValueOf(&err).Elem()
	if fnType.NumOut() == 2 {
		return []reflect.Value{
			reflect.Zero(fnType.Out(0)),
			rerr,
		}
	}
	return []reflect.Value{rerr}
}
