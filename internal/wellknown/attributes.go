package wellknown

import (
	"fmt"
	"slices"
	"strings"
)

// AttributeID identifies a well-known attribute description. Zero is invalid.
type AttributeID uint8

const (
	AttrNone AttributeID = iota
	AttrAttributeUsage
	AttrConditional
	AttrCaseInsensitiveExtension
	AttrCaseSensitiveExtension
	AttrInternalsVisibleTo
	AttrAssemblySignatureKey
	AttrAssemblyKeyFile
	AttrAssemblyKeyName
	AttrParamArray
	AttrDefaultMember
	AttrIndexerName
	AttrAssemblyDelaySign
	AttrAssemblyVersion
	AttrAssemblyFileVersion
	AttrAssemblyTitle
	AttrAssemblyDescription
	AttrAssemblyCulture
	AttrAssemblyCompany
	AttrAssemblyProduct
	AttrAssemblyInformationalVersion
	AttrAssemblyCopyright
	AttrSatelliteContractVersion
	AttrAssemblyTrademark
	AttrAssemblyFlags
	AttrCallerArgumentExpression
	AttrCallerFilePath
	AttrCallerLineNumber
	AttrCallerMemberName
	AttrDefaultParameterValue
	AttrUnverifiableCode
	AttrSecurityPermission
	AttrDllImport
	AttrFuncImpl
	AttrPreserveSig
	AttrDefaultCharSet
	AttrSpecialName
	AttrSerializable
	AttrNonSerialized
	AttrStructLayout
	AttrFieldOffset
	AttrFixedBuffer
	AttrNotNullWhenTrue
	AttrNotNullWhenFalse
	AttrEnsuresNotNull
	AttrAssertsTrue
	AttrAssertsFalse
	AttrIn
	AttrIsReadOnly
	AttrIsUnmanaged
	AttrCoClass
	AttrGuid
	AttrCLSCompliant
	AttrHostProtection
	AttrSuppressUnmanagedCodeSecurity
	AttrPrincipalPermission
	AttrPermissionSet
	AttrTypeIdentifier
	AttrCodeAnalysisEmbedded
	AttrAccessedThroughProperty
	AttrClassInterface
	AttrDispId
	AttrTypeLibVersion
	AttrComCompatibleVersion
	AttrInterfaceType
	AttrDynamicSecurityMethod
	AttrRequiredAttribute
	AttrAsyncMethodBuilder
	AttrAsyncStateMachine
	AttrIteratorStateMachine
	AttrCompilationRelaxations
	AttrReferenceAssembly
	AttrRuntimeCompatibility
	AttrDebuggable
	AttrTypeForwardedTo
	AttrSTAThread
	AttrObsolete
	AttrTypeLibType
	AttrTupleElementNames
	AttrIsByRefLike
	AttrDebuggerHidden
	AttrDebuggerNonUserCode
	AttrDebuggerStepperBoundary
	AttrDebuggerStepThrough
	AttrSecurityCritical
	AttrSecuritySafeCritical
	AttrBestFitMapping
	AttrFlags
	AttrLCIDConversion
	AttrUnmanagedFunctionPointer
	AttrPrimaryInteropAssembly
	AttrImportedFromTypeLib
	AttrDefaultEvent
	AttrAssemblyConfiguration
	AttrAssemblyAlgorithmId
	AttrExcludeFromCodeCoverage
	AttrOut

	AttributeCount
)

// AttributeDescription names a well-known attribute and the constructor
// signatures that are recognized for it. Signatures are OR-matched.
//
// A signature is {SigInstance, paramCount, SigVoid, param...}; a SigTypeHandle
// parameter is followed by a TypeHandleTarget byte.
type AttributeDescription struct {
	Namespace         string
	Name              string
	Signatures        [][]byte
	MatchIgnoringCase bool
}

func (a AttributeDescription) FullName() string {
	return a.Namespace + "." + a.Name
}

func (a AttributeDescription) clone() AttributeDescription {
	sigs := make([][]byte, len(a.Signatures))
	for i, sig := range a.Signatures {
		sigs[i] = slices.Clone(sig)
	}
	a.Signatures = sigs
	return a
}

func (a AttributeDescription) String() string {
	return fmt.Sprintf("%s(%d)", a.FullName(), len(a.Signatures))
}

// ParameterCount returns the parameter count of signature i.
func (a AttributeDescription) ParameterCount(i int) int {
	sig := a.Signatures[i]
	if sig[0] != SigInstance {
		panic(fmt.Errorf("attribute %s: signature %d is not an instance constructor", a.FullName(), i))
	}
	return int(sig[1])
}

// Matches compares namespace and name, ignoring case when the description asks for it.
func (a AttributeDescription) Matches(namespace, name string) bool {
	if a.MatchIgnoringCase {
		return strings.EqualFold(a.Namespace, namespace) && strings.EqualFold(a.Name, name)
	}
	return a.Namespace == namespace && a.Name == name
}

// SigParam is one decoded attribute constructor parameter.
type SigParam struct {
	Code   SignatureTypeCode
	Target TypeHandleTarget // valid when Code == SigTypeHandle
	Elem   SignatureTypeCode // valid when Code == SigSZArray
}

// Params decodes the parameter list of signature i.
func (a AttributeDescription) Params(i int) []SigParam {
	sig := a.Signatures[i]
	n := a.ParameterCount(i)
	out := make([]SigParam, 0, n)
	for pos := 3; pos < len(sig); pos++ {
		p := SigParam{Code: SignatureTypeCode(sig[pos])}
		switch p.Code {
		case SigTypeHandle:
			pos++
			p.Target = TypeHandleTarget(sig[pos])
		case SigSZArray:
			pos++
			p.Elem = SignatureTypeCode(sig[pos])
		}
		out = append(out, p)
	}
	return out
}

// TypeHandleTarget names the enum or type referenced from an attribute signature.
type TypeHandleTarget uint8

const (
	TargetAttributeTargets TypeHandleTarget = iota
	TargetAssemblyNameFlags
	TargetMethodImplOptions
	TargetCharSet
	TargetLayoutKind
	TargetUnmanagedType
	TargetTypeLibTypeFlags
	TargetClassInterfaceType
	TargetComInterfaceType
	TargetCompilationRelaxations
	TargetDebuggingModes
	TargetSecurityCriticalScope
	TargetCallingConvention
	TargetAssemblyHashAlgorithm
	TargetTransactionOption
	TargetSecurityAction
	TargetSystemType
	TargetDeprecationType
	TargetPlatform

	TypeHandleTargetCount
)

// TypeHandleTargetInfo locates a target type; Underlying is the serialized form.
type TypeHandleTargetInfo struct {
	Namespace  string
	Name       string
	Underlying SignatureTypeCode
}

var typeHandleTargets = [TypeHandleTargetCount]TypeHandleTargetInfo{
	TargetAttributeTargets:       {"core", "AttributeTargets", SigInt32},
	TargetAssemblyNameFlags:      {"System.Reflection", "AssemblyNameFlags", SigInt32},
	TargetMethodImplOptions:      {"core.runtime", "FuncImplOptions", SigInt32},
	TargetCharSet:                {"core.runtime", "CharSet", SigInt32},
	TargetLayoutKind:             {"core.runtime", "LayoutKind", SigInt32},
	TargetUnmanagedType:          {"core.runtime", "UnmanagedType", SigInt32},
	TargetTypeLibTypeFlags:       {"core.runtime", "TypeLibTypeFlags", SigInt32},
	TargetClassInterfaceType:     {"core.runtime", "ClassInterfaceType", SigInt32},
	TargetComInterfaceType:       {"core.runtime", "ComInterfaceType", SigInt32},
	TargetCompilationRelaxations: {"core.runtime", "CompilationRelaxations", SigInt32},
	TargetDebuggingModes:         {"core.diagnostics.DebuggableAttribute", "DebuggingModes", SigInt32},
	TargetSecurityCriticalScope:  {"core.security", "SecurityCriticalScope", SigInt32},
	TargetCallingConvention:      {"core.runtime", "CallingConvention", SigInt32},
	TargetAssemblyHashAlgorithm:  {"core.configuration.assemblies", "AssemblyHashAlgorithm", SigInt32},
	TargetTransactionOption:      {"System.EnterpriseServices", "TransactionOption", SigInt32},
	TargetSecurityAction:         {"System.Security.Permissions", "SecurityAction", SigInt32},
	TargetSystemType:             {"core", "Type", SigTypeHandle},
	TargetDeprecationType:        {"core.metadata", "DeprecationType", SigInt32},
	TargetPlatform:               {"core.metadata", "Platform", SigInt32},
}

func (t TypeHandleTarget) Info() TypeHandleTargetInfo {
	return typeHandleTargets[t%TypeHandleTargetCount]
}

var (
	sigVoid                       = []byte{SigInstance, 0, byte(SigVoid)}
	sigVoidInt16                  = []byte{SigInstance, 1, byte(SigVoid), byte(SigInt16)}
	sigVoidInt32                  = []byte{SigInstance, 1, byte(SigVoid), byte(SigInt32)}
	sigVoidUInt32                 = []byte{SigInstance, 1, byte(SigVoid), byte(SigUInt32)}
	sigVoidInt32Int32             = []byte{SigInstance, 2, byte(SigVoid), byte(SigInt32), byte(SigInt32)}
	sigVoidInt32Int32Int32Int32   = []byte{SigInstance, 4, byte(SigVoid), byte(SigInt32), byte(SigInt32), byte(SigInt32), byte(SigInt32)}
	sigVoidString                 = []byte{SigInstance, 1, byte(SigVoid), byte(SigString)}
	sigVoidObject                 = []byte{SigInstance, 1, byte(SigVoid), byte(SigObject)}
	sigVoidStringString           = []byte{SigInstance, 2, byte(SigVoid), byte(SigString), byte(SigString)}
	sigVoidStringBoolean          = []byte{SigInstance, 2, byte(SigVoid), byte(SigString), byte(SigBoolean)}
	sigVoidAttributeTargets       = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetAttributeTargets)}
	sigVoidAssemblyNameFlags      = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetAssemblyNameFlags)}
	sigVoidMethodImplOptions      = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetMethodImplOptions)}
	sigVoidCharSet                = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetCharSet)}
	sigVoidLayoutKind             = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetLayoutKind)}
	sigVoidTypeLibTypeFlags       = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetTypeLibTypeFlags)}
	sigVoidClassInterfaceType     = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetClassInterfaceType)}
	sigVoidComInterfaceType       = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetComInterfaceType)}
	sigVoidCompilationRelaxations = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetCompilationRelaxations)}
	sigVoidDebuggingModes         = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetDebuggingModes)}
	sigVoidSecurityCriticalScope  = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetSecurityCriticalScope)}
	sigVoidCallingConvention      = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetCallingConvention)}
	sigVoidAssemblyHashAlgorithm  = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetAssemblyHashAlgorithm)}
	sigVoidBoolean                = []byte{SigInstance, 1, byte(SigVoid), byte(SigBoolean)}
	sigVoidBooleanBoolean         = []byte{SigInstance, 2, byte(SigVoid), byte(SigBoolean), byte(SigBoolean)}
	sigVoidSecurityAction         = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetSecurityAction)}
	sigVoidType                   = []byte{SigInstance, 1, byte(SigVoid), byte(SigTypeHandle), byte(TargetSystemType)}
	sigVoidTypeInt32              = []byte{SigInstance, 2, byte(SigVoid), byte(SigTypeHandle), byte(TargetSystemType), byte(SigInt32)}
	sigVoidSzArrayString          = []byte{SigInstance, 1, byte(SigVoid), byte(SigSZArray), byte(SigString)}
)

var attributeTable = [AttributeCount]AttributeDescription{
	AttrAttributeUsage:                {Namespace: "core", Name: "AttributeUsageAttribute", Signatures: [][]byte{sigVoidAttributeTargets}},
	AttrConditional:                   {Namespace: "core.diagnostics", Name: "ConditionalAttribute", Signatures: [][]byte{sigVoidString}},
	AttrCaseInsensitiveExtension:      {Namespace: "core.runtime", Name: "ExtensionAttribute", Signatures: [][]byte{sigVoid}, MatchIgnoringCase: true},
	AttrCaseSensitiveExtension:        {Namespace: "core.runtime", Name: "ExtensionAttribute", Signatures: [][]byte{sigVoid}},
	AttrInternalsVisibleTo:            {Namespace: "core.runtime", Name: "InternalsVisibleToAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblySignatureKey:          {Namespace: "System.Reflection", Name: "AssemblySignatureKeyAttribute", Signatures: [][]byte{sigVoidStringString}},
	AttrAssemblyKeyFile:               {Namespace: "System.Reflection", Name: "AssemblyKeyFileAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyKeyName:               {Namespace: "System.Reflection", Name: "AssemblyKeyNameAttribute", Signatures: [][]byte{sigVoidString}},
	AttrParamArray:                    {Namespace: "System", Name: "ParamArrayAttribute", Signatures: [][]byte{sigVoid}},
	AttrDefaultMember:                 {Namespace: "core.runtime", Name: "DefaultMemberAttribute", Signatures: [][]byte{sigVoidString}},
	AttrIndexerName:                   {Namespace: "core.runtime", Name: "IndexerNameAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyDelaySign:             {Namespace: "System.Reflection", Name: "AssemblyDelaySignAttribute", Signatures: [][]byte{sigVoidBoolean}},
	AttrAssemblyVersion:               {Namespace: "System.Reflection", Name: "AssemblyVersionAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyFileVersion:           {Namespace: "System.Reflection", Name: "AssemblyFileVersionAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyTitle:                 {Namespace: "System.Reflection", Name: "AssemblyTitleAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyDescription:           {Namespace: "System.Reflection", Name: "AssemblyDescriptionAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyCulture:               {Namespace: "System.Reflection", Name: "AssemblyCultureAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyCompany:               {Namespace: "System.Reflection", Name: "AssemblyCompanyAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyProduct:               {Namespace: "System.Reflection", Name: "AssemblyProductAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyInformationalVersion:  {Namespace: "System.Reflection", Name: "AssemblyInformationalVersionAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyCopyright:             {Namespace: "System.Reflection", Name: "AssemblyCopyrightAttribute", Signatures: [][]byte{sigVoidString}},
	AttrSatelliteContractVersion:      {Namespace: "System.Resources", Name: "SatelliteContractVersionAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyTrademark:             {Namespace: "System.Reflection", Name: "AssemblyTrademarkAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyFlags:                 {Namespace: "System.Reflection", Name: "AssemblyFlagsAttribute", Signatures: [][]byte{sigVoidAssemblyNameFlags, sigVoidInt32, sigVoidUInt32}},
	AttrCallerArgumentExpression:      {Namespace: "core.diagnostics", Name: "CallerArgumentExpressionAttribute", Signatures: [][]byte{sigVoidString}},
	AttrCallerFilePath:                {Namespace: "core.diagnostics", Name: "CallerFilePathAttribute", Signatures: [][]byte{sigVoid}},
	AttrCallerLineNumber:              {Namespace: "core.diagnostics", Name: "CallerLineNumberAttribute", Signatures: [][]byte{sigVoid}},
	AttrCallerMemberName:              {Namespace: "core.diagnostics", Name: "CallerMemberNameAttribute", Signatures: [][]byte{sigVoid}},
	AttrDefaultParameterValue:         {Namespace: "core.runtime", Name: "DefaultParameterValueAttribute", Signatures: [][]byte{sigVoidObject}},
	AttrUnverifiableCode:              {Namespace: "core.runtime", Name: "UnverifiableCodeAttribute", Signatures: [][]byte{sigVoid}},
	AttrSecurityPermission:            {Namespace: "core.runtime", Name: "SecurityPermissionAttribute", Signatures: [][]byte{sigVoidSecurityAction}},
	AttrDllImport:                     {Namespace: "core.runtime", Name: "DllImportAttribute", Signatures: [][]byte{sigVoidString}},
	AttrFuncImpl:                      {Namespace: "core.runtime", Name: "FuncImplAttribute", Signatures: [][]byte{sigVoid, sigVoidInt16, sigVoidMethodImplOptions}},
	AttrPreserveSig:                   {Namespace: "core.runtime", Name: "PreserveSigAttribute", Signatures: [][]byte{sigVoid}},
	AttrDefaultCharSet:                {Namespace: "core.runtime", Name: "DefaultCharSetAttribute", Signatures: [][]byte{sigVoidCharSet}},
	AttrSpecialName:                   {Namespace: "core.runtime", Name: "SpecialNameAttribute", Signatures: [][]byte{sigVoid}},
	AttrSerializable:                  {Namespace: "System", Name: "SerializableAttribute", Signatures: [][]byte{sigVoid}},
	AttrNonSerialized:                 {Namespace: "System", Name: "NonSerializedAttribute", Signatures: [][]byte{sigVoid}},
	AttrStructLayout:                  {Namespace: "core.runtime", Name: "StructLayoutAttribute", Signatures: [][]byte{sigVoidInt16, sigVoidLayoutKind}},
	AttrFieldOffset:                   {Namespace: "core.runtime", Name: "FieldOffsetAttribute", Signatures: [][]byte{sigVoidInt32}},
	AttrFixedBuffer:                   {Namespace: "core.runtime", Name: "FixedBufferAttribute", Signatures: [][]byte{sigVoidTypeInt32}},
	AttrNotNullWhenTrue:               {Namespace: "core.runtime", Name: "NotNullWhenTrueAttribute", Signatures: [][]byte{sigVoid}},
	AttrNotNullWhenFalse:              {Namespace: "core.runtime", Name: "NotNullWhenFalseAttribute", Signatures: [][]byte{sigVoid}},
	AttrEnsuresNotNull:                {Namespace: "core.runtime", Name: "EnsuresNotNullAttribute", Signatures: [][]byte{sigVoid}},
	AttrAssertsTrue:                   {Namespace: "core.runtime", Name: "AssertsTrueAttribute", Signatures: [][]byte{sigVoid}},
	AttrAssertsFalse:                  {Namespace: "core.runtime", Name: "AssertsFalseAttribute", Signatures: [][]byte{sigVoid}},
	AttrIn:                            {Namespace: "core.runtime", Name: "InAttribute", Signatures: [][]byte{sigVoid}},
	AttrIsReadOnly:                    {Namespace: "core.runtime", Name: "ReadOnlyAttribute", Signatures: [][]byte{sigVoid}},
	AttrIsUnmanaged:                   {Namespace: "core.runtime", Name: "UnmanagedAttribute", Signatures: [][]byte{sigVoid}},
	AttrCoClass:                       {Namespace: "core.runtime", Name: "CoClassAttribute", Signatures: [][]byte{sigVoidType}},
	AttrGuid:                          {Namespace: "core.runtime", Name: "GuidAttribute", Signatures: [][]byte{sigVoidString}},
	AttrCLSCompliant:                  {Namespace: "System", Name: "CLSCompliantAttribute", Signatures: [][]byte{sigVoidBoolean}},
	AttrHostProtection:                {Namespace: "System.Security.Permissions", Name: "HostProtectionAttribute", Signatures: [][]byte{sigVoid, sigVoidSecurityAction}},
	AttrSuppressUnmanagedCodeSecurity: {Namespace: "System.Security", Name: "SuppressUnmanagedCodeSecurityAttribute", Signatures: [][]byte{sigVoid}},
	AttrPrincipalPermission:           {Namespace: "System.Security.Permissions", Name: "PrincipalPermissionAttribute", Signatures: [][]byte{sigVoidSecurityAction}},
	AttrPermissionSet:                 {Namespace: "System.Security.Permissions", Name: "PermissionSetAttribute", Signatures: [][]byte{sigVoidSecurityAction}},
	AttrTypeIdentifier:                {Namespace: "core.runtime", Name: "TypeIdentifierAttribute", Signatures: [][]byte{sigVoid, sigVoidStringString}},
	AttrCodeAnalysisEmbedded:          {Namespace: "stark.compiler", Name: "EmbeddedAttribute", Signatures: [][]byte{sigVoid}},
	AttrAccessedThroughProperty:       {Namespace: "core.runtime", Name: "AccessedThroughPropertyAttribute", Signatures: [][]byte{sigVoidString}},
	AttrClassInterface:                {Namespace: "core.runtime", Name: "ClassInterfaceAttribute", Signatures: [][]byte{sigVoidInt16, sigVoidClassInterfaceType}},
	AttrDispId:                        {Namespace: "core.runtime", Name: "DispIdAttribute", Signatures: [][]byte{sigVoidInt32}},
	AttrTypeLibVersion:                {Namespace: "core.runtime", Name: "TypeLibVersionAttribute", Signatures: [][]byte{sigVoidInt32Int32}},
	AttrComCompatibleVersion:          {Namespace: "core.runtime", Name: "ComCompatibleVersionAttribute", Signatures: [][]byte{sigVoidInt32Int32Int32Int32}},
	AttrInterfaceType:                 {Namespace: "core.runtime", Name: "InterfaceTypeAttribute", Signatures: [][]byte{sigVoidInt16, sigVoidComInterfaceType}},
	AttrDynamicSecurityMethod:         {Namespace: "System.Security", Name: "DynamicSecurityMethodAttribute", Signatures: [][]byte{sigVoid}},
	AttrRequiredAttribute:             {Namespace: "core.runtime", Name: "RequiredAttributeAttribute", Signatures: [][]byte{sigVoidType}},
	AttrAsyncMethodBuilder:            {Namespace: "core.runtime", Name: "AsyncMethodBuilderAttribute", Signatures: [][]byte{sigVoidType}},
	AttrAsyncStateMachine:             {Namespace: "core.runtime", Name: "AsyncStateMachineAttribute", Signatures: [][]byte{sigVoidType}},
	AttrIteratorStateMachine:          {Namespace: "core.runtime", Name: "IteratorStateMachineAttribute", Signatures: [][]byte{sigVoidType}},
	AttrCompilationRelaxations:        {Namespace: "core.runtime", Name: "CompilationRelaxationsAttribute", Signatures: [][]byte{sigVoidInt32, sigVoidCompilationRelaxations}},
	AttrReferenceAssembly:             {Namespace: "core.runtime", Name: "ReferenceAssemblyAttribute", Signatures: [][]byte{sigVoid}},
	AttrRuntimeCompatibility:          {Namespace: "core.runtime", Name: "RuntimeCompatibilityAttribute", Signatures: [][]byte{sigVoid}},
	AttrDebuggable:                    {Namespace: "System.Diagnostics", Name: "DebuggableAttribute", Signatures: [][]byte{sigVoidBooleanBoolean, sigVoidDebuggingModes}},
	AttrTypeForwardedTo:               {Namespace: "core.runtime", Name: "TypeForwardedToAttribute", Signatures: [][]byte{sigVoidType}},
	AttrSTAThread:                     {Namespace: "System", Name: "STAThreadAttribute", Signatures: [][]byte{sigVoid}},
	AttrObsolete:                      {Namespace: "System", Name: "ObsoleteAttribute", Signatures: [][]byte{sigVoid, sigVoidString, sigVoidStringBoolean}},
	AttrTypeLibType:                   {Namespace: "core.runtime", Name: "TypeLibTypeAttribute", Signatures: [][]byte{sigVoidInt16, sigVoidTypeLibTypeFlags}},
	AttrTupleElementNames:             {Namespace: "core.runtime", Name: "TupleElementNamesAttribute", Signatures: [][]byte{sigVoid, sigVoidSzArrayString}},
	AttrIsByRefLike:                   {Namespace: "core.runtime", Name: "ByRefLikeAttribute", Signatures: [][]byte{sigVoid}},
	AttrDebuggerHidden:                {Namespace: "System.Diagnostics", Name: "DebuggerHiddenAttribute", Signatures: [][]byte{sigVoid}},
	AttrDebuggerNonUserCode:           {Namespace: "System.Diagnostics", Name: "DebuggerNonUserCodeAttribute", Signatures: [][]byte{sigVoid}},
	AttrDebuggerStepperBoundary:       {Namespace: "System.Diagnostics", Name: "DebuggerStepperBoundaryAttribute", Signatures: [][]byte{sigVoid}},
	AttrDebuggerStepThrough:           {Namespace: "System.Diagnostics", Name: "DebuggerStepThroughAttribute", Signatures: [][]byte{sigVoid}},
	AttrSecurityCritical:              {Namespace: "System.Security", Name: "SecurityCriticalAttribute", Signatures: [][]byte{sigVoid, sigVoidSecurityCriticalScope}},
	AttrSecuritySafeCritical:          {Namespace: "System.Security", Name: "SecuritySafeCriticalAttribute", Signatures: [][]byte{sigVoid}},
	AttrBestFitMapping:                {Namespace: "core.runtime", Name: "BestFitMappingAttribute", Signatures: [][]byte{sigVoidBoolean}},
	AttrFlags:                         {Namespace: "System", Name: "FlagsAttribute", Signatures: [][]byte{sigVoid}},
	AttrLCIDConversion:                {Namespace: "core.runtime", Name: "LCIDConversionAttribute", Signatures: [][]byte{sigVoidInt32}},
	AttrUnmanagedFunctionPointer:      {Namespace: "core.runtime", Name: "UnmanagedFunctionPointerAttribute", Signatures: [][]byte{sigVoidCallingConvention}},
	AttrPrimaryInteropAssembly:        {Namespace: "core.runtime", Name: "PrimaryInteropAssemblyAttribute", Signatures: [][]byte{sigVoidInt32Int32}},
	AttrImportedFromTypeLib:           {Namespace: "core.runtime", Name: "ImportedFromTypeLibAttribute", Signatures: [][]byte{sigVoidString}},
	AttrDefaultEvent:                  {Namespace: "System.ComponentModel", Name: "DefaultEventAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyConfiguration:         {Namespace: "System.Reflection", Name: "AssemblyConfigurationAttribute", Signatures: [][]byte{sigVoidString}},
	AttrAssemblyAlgorithmId:           {Namespace: "System.Reflection", Name: "AssemblyAlgorithmIdAttribute", Signatures: [][]byte{sigVoidAssemblyHashAlgorithm, sigVoidUInt32}},
	AttrExcludeFromCodeCoverage:       {Namespace: "System.Diagnostics.CodeAnalysis", Name: "ExcludeFromCodeCoverageAttribute", Signatures: [][]byte{sigVoid}},
	AttrOut:                           {Namespace: "core.runtime", Name: "OutAttribute", Signatures: [][]byte{sigVoid}},
}

// Attribute returns the description for id.
func Attribute(id AttributeID) (AttributeDescription, bool) {
	if id == AttrNone || id >= AttributeCount {
		return AttributeDescription{}, false
	}
	return attributeTable[id].clone(), true
}
